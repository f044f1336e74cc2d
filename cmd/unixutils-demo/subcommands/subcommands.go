// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package subcommands holds the subcommands of unixutils-demo
package subcommands

import (
	"github.com/DataDog/unixutils/cmd/unixutils-demo/command"
	"github.com/DataDog/unixutils/cmd/unixutils-demo/subcommands/clock"
	"github.com/DataDog/unixutils/cmd/unixutils-demo/subcommands/queues"
	"github.com/DataDog/unixutils/cmd/unixutils-demo/subcommands/timestamps"
)

// DemoSubcommands returns all subcommands of unixutils-demo
func DemoSubcommands() []command.SubcommandFactory {
	return []command.SubcommandFactory{
		clock.Commands,
		queues.Commands,
		timestamps.Commands,
	}
}
