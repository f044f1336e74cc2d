// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package clock implements 'unixutils-demo clock'.
package clock

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/DataDog/unixutils/cmd/unixutils-demo/command"
)

type cliParams struct {
	*command.GlobalParams
	sleep time.Duration
}

// Commands returns a slice of subcommands for the 'unixutils-demo' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	cliParams := &cliParams{GlobalParams: globalParams}

	clockCmd := &cobra.Command{
		Use:   "clock",
		Short: "Read the clock across a sleep",
		Long:  "Read the nanosecond wall clock, sleep, and read it again.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), cliParams)
		},
	}
	clockCmd.Flags().DurationVar(&cliParams.sleep, "sleep", time.Second, "time to sleep between the two reads")

	return []*cobra.Command{clockCmd}
}

func run(w io.Writer, params *cliParams) error {
	demo, err := command.Setup(params.GlobalParams)
	if err != nil {
		return err
	}
	demo.Describe(w)

	start := demo.Utils.Now()
	time.Sleep(params.sleep)
	end := demo.Utils.Now()

	fmt.Fprintf(w, "start:   %d\n", start)
	fmt.Fprintf(w, "end:     %d\n", end)
	fmt.Fprintf(w, "elapsed: %s (slept %s)\n", time.Duration(end-start), params.sleep)
	return demo.Finish(w)
}
