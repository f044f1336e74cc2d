// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package timestamps implements 'unixutils-demo timestamps'.
package timestamps

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DataDog/unixutils/cmd/unixutils-demo/command"
)

const message = "Hello World\n"

// Commands returns a slice of subcommands for the 'unixutils-demo' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	timestampsCmd := &cobra.Command{
		Use:   "timestamps",
		Short: "Measure the latency between a send and its kernel receive timestamp",
		Long: `Enable kernel receive timestamps on a loopback connection, send a message and
compare its arrival time to the send and read times.

Enabling receive timestamps switches them on for every socket of the host.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), globalParams)
		},
	}

	return []*cobra.Command{timestampsCmd}
}

func run(w io.Writer, params *command.GlobalParams) error {
	demo, err := command.Setup(params)
	if err != nil {
		return err
	}
	demo.Describe(w)
	u := demo.Utils

	client, server, err := command.Loopback(5 * time.Second)
	if err != nil {
		return err
	}
	defer client.Close()
	defer server.Close()

	serverFD, err := u.ExtractDescriptor(server)
	if err != nil {
		return err
	}
	u.EnableReceiveTimestamps(serverFD)

	sent := u.Now()
	if _, err := io.WriteString(client, message); err != nil {
		return err
	}
	if _, err := io.ReadFull(server, make([]byte, len(message))); err != nil {
		return err
	}
	received := u.ReceiveTimestampNanos(serverFD)
	read := u.Now()

	fmt.Fprintf(w, "sent:     %d\n", sent)
	fmt.Fprintf(w, "received: %d\n", received)
	fmt.Fprintf(w, "read:     %d\n", read)
	fmt.Fprintf(w, "%s %s\n", color.CyanString("in flight:"), time.Duration(received-sent))
	fmt.Fprintf(w, "%s %s\n", color.CyanString("queued:   "), time.Duration(read-received))
	return demo.Finish(w)
}
