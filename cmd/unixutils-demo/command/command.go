// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package command holds the top-level command and the setup shared by the
// subcommands.
package command

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/DataDog/unixutils/pkg/config"
	"github.com/DataDog/unixutils/pkg/unixutils"
	"github.com/DataDog/unixutils/pkg/unixutils/native"
	"github.com/DataDog/unixutils/pkg/unixutils/platform"
	"github.com/DataDog/unixutils/pkg/unixutils/telemetry"
)

// GlobalParams contains the values of the global flags.
//
// A pointer to this type is passed to SubcommandFactory's, but its contents
// are not valid until Cobra calls the subcommand's Run or RunE function.
type GlobalParams struct {
	// ConfFilePath is an optional YAML configuration file.
	ConfFilePath string
	// LogLevel overrides log_level when set.
	LogLevel string
	// Backend overrides unixutils.native_backend when set.
	Backend string
	// DumpMetrics prints the collected metrics once the subcommand is done.
	DumpMetrics bool
	// NoColor disables color output.
	NoColor bool
}

// SubcommandFactory returns a sub-command factory
type SubcommandFactory func(globalParams *GlobalParams) []*cobra.Command

// MakeCommand makes the top-level Cobra command for this command.
func MakeCommand(subcommandFactories []SubcommandFactory) *cobra.Command {
	var globalParams GlobalParams

	demoCmd := &cobra.Command{
		Use:   "unixutils-demo [command]",
		Short: "Exercise kernel socket queue lengths and receive timestamps.",
		Long: `
unixutils-demo opens a loopback TCP connection and reports what the kernel
knows about it: bytes waiting in the socket queues and packet arrival times.`,
		SilenceUsage: true,
	}

	demoCmd.PersistentFlags().StringVarP(&globalParams.ConfFilePath, "config", "c", "", "path to a unixutils YAML configuration file")
	demoCmd.PersistentFlags().StringVar(&globalParams.LogLevel, "log-level", "", "override the configured log level")
	demoCmd.PersistentFlags().StringVar(&globalParams.Backend, "backend", "", fmt.Sprintf("native backend, one of %s", strings.Join(native.Backends(), ", ")))
	demoCmd.PersistentFlags().BoolVar(&globalParams.DumpMetrics, "dump-metrics", false, "print the unixutils metrics in the Prometheus text format before exiting")
	demoCmd.PersistentFlags().BoolVarP(&globalParams.NoColor, "no-color", "n", false, "disable color output")

	demoCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if globalParams.NoColor {
			color.NoColor = true
		}
	}
	for _, factory := range subcommandFactories {
		for _, subcmd := range factory(&globalParams) {
			demoCmd.AddCommand(subcmd)
		}
	}

	return demoCmd
}

// Demo is what a subcommand works with.
type Demo struct {
	Utils    *unixutils.UnixUtils
	Registry *prometheus.Registry
	params   *GlobalParams
}

// Setup loads the configuration, sets up logging and detects the capability
// with the flag overrides applied.
func Setup(params *GlobalParams) (*Demo, error) {
	cfg := config.Global
	if err := config.Load(cfg, params.ConfFilePath); err != nil {
		return nil, err
	}
	if params.LogLevel != "" {
		cfg.Set("log_level", params.LogLevel)
	}
	if params.Backend != "" {
		cfg.Set("unixutils.native_backend", params.Backend)
	}
	if err := config.SetupLoggerFromConfig(cfg); err != nil {
		return nil, err
	}

	c := platform.Detect(platform.Current(), platform.OptionsFromConfig(cfg))

	registry := prometheus.NewRegistry()
	var opts []unixutils.Option
	if cfg.GetBool("unixutils.telemetry.enabled") {
		tel := telemetry.New()
		if err := tel.Register(registry); err != nil {
			return nil, err
		}
		opts = append(opts, unixutils.WithTelemetry(tel))
	}
	u := unixutils.New(c, opts...)
	if err := registry.Register(u.QueueCollector()); err != nil {
		return nil, err
	}

	return &Demo{Utils: u, Registry: registry, params: params}, nil
}

// Describe prints the detection outcome.
func (d *Demo) Describe(w io.Writer) {
	c := d.Utils.Capability()
	if c.Supported() {
		fmt.Fprintf(w, "native integration: %s on %s (%s backend)\n", color.GreenString("enabled"), c.Platform(), c.Bindings().Backend())
		return
	}
	fmt.Fprintf(w, "native integration: %s on %s (%s)\n", color.YellowString("disabled"), c.Platform(), c.Reason())
	if c.Err() != nil {
		fmt.Fprintf(w, "  %s\n", c.Err())
	}
}

// Finish dumps the metrics when --dump-metrics is set.
func (d *Demo) Finish(w io.Writer) error {
	if !d.params.DumpMetrics {
		return nil
	}
	return DumpMetrics(w, d.Registry)
}

// DumpMetrics writes every metric family of g in the Prometheus text format.
func DumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Loopback returns both ends of a TCP connection over 127.0.0.1.
func Loopback(timeout time.Duration) (client *net.TCPConn, server *net.TCPConn, err error) {
	ln, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, nil, err
	}
	defer ln.Close()
	if err := ln.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, err
	}

	type accepted struct {
		conn *net.TCPConn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		c, err := ln.AcceptTCP()
		ch <- accepted{c, err}
	}()

	client, err = net.DialTCP("tcp4", nil, ln.Addr().(*net.TCPAddr))
	if err != nil {
		return nil, nil, err
	}
	a := <-ch
	if a.err != nil {
		client.Close()
		return nil, nil, a.err
	}
	return client, a.conn, nil
}
