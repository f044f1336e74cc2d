// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Command unixutils-demo exercises socket queue lengths and receive
// timestamps over a loopback connection.
package main

import (
	"os"

	"github.com/DataDog/unixutils/cmd/unixutils-demo/command"
	"github.com/DataDog/unixutils/cmd/unixutils-demo/subcommands"
	"github.com/DataDog/unixutils/pkg/util/log"

	// registers the libc native backend
	_ "github.com/DataDog/unixutils/pkg/unixutils/native/libc"
)

func main() {
	err := command.MakeCommand(subcommands.DemoSubcommands()).Execute()
	log.Flush()
	if err != nil {
		os.Exit(1)
	}
}
