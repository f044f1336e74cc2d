// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package queues implements 'unixutils-demo queues'.
package queues

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/DataDog/unixutils/cmd/unixutils-demo/command"
	"github.com/DataDog/unixutils/pkg/unixutils"
)

const message = "Hello World\n"

type cliParams struct {
	*command.GlobalParams
	settle time.Duration
}

// Commands returns a slice of subcommands for the 'unixutils-demo' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	cliParams := &cliParams{GlobalParams: globalParams}

	queuesCmd := &cobra.Command{
		Use:   "queues",
		Short: "Show socket queue lengths around a write and a read",
		Long: `Open a loopback connection, write a message without reading it and print
the queue lengths of both ends, then read it and print them again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), cliParams)
		},
	}
	queuesCmd.Flags().DurationVar(&cliParams.settle, "settle", time.Second, "maximum time to wait for the message to reach the receive queue")

	return []*cobra.Command{queuesCmd}
}

type endpoint struct {
	name string
	fd   int
}

func run(w io.Writer, params *cliParams) error {
	demo, err := command.Setup(params.GlobalParams)
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

	clientFD, err := u.ExtractDescriptor(client)
	if err != nil {
		return err
	}
	serverFD, err := u.ExtractDescriptor(server)
	if err != nil {
		return err
	}
	endpoints := []endpoint{{"client", clientFD}, {"server", serverFD}}
	queues := u.QueueCollector()
	for _, e := range endpoints {
		queues.Track(e.name, e.fd)
	}
	defer func() {
		for _, e := range endpoints {
			queues.Untrack(e.name)
		}
	}()

	table := newQueueTable(w)
	table.add("before write", u, endpoints)

	if _, err := io.WriteString(client, message); err != nil {
		return err
	}
	deadline := time.Now().Add(params.settle)
	for u.IsSupported() && u.InputQueueLength(serverFD) < len(message) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	table.add(fmt.Sprintf("after writing %d bytes", len(message)), u, endpoints)

	if err := demo.Finish(w); err != nil {
		return err
	}

	if _, err := io.ReadFull(server, make([]byte, len(message))); err != nil {
		return err
	}
	table.add("after read", u, endpoints)
	table.Render()
	return nil
}

type queueTable struct {
	*tablewriter.Table
}

func newQueueTable(w io.Writer) queueTable {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Stage", "Socket", "Input", "Output"})
	t.SetAutoWrapText(false)
	return queueTable{t}
}

func (t queueTable) add(stage string, u *unixutils.UnixUtils, endpoints []endpoint) {
	for _, e := range endpoints {
		t.Append([]string{
			color.CyanString(stage),
			e.name,
			humanize.Bytes(uint64(u.InputQueueLength(e.fd))),
			humanize.Bytes(uint64(u.OutputQueueLength(e.fd))),
		})
	}
}
