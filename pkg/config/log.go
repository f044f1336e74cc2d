// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2017-present Datadog, Inc.

package config

import (
	"fmt"
	"strings"

	"github.com/cihub/seelog"

	"github.com/DataDog/unixutils/pkg/util/log"
)

const logFileMaxSize = 10 * 1024 * 1024         // 10MB
const logDateFormat = "2006-01-02 15:04:05 MST" // see time.Format for format syntax

// buildLoggerConfig renders the seelog XML configuration.
func buildLoggerConfig(logLevel, logFile string) string {
	configTemplate := `<seelog minlevel="%s">
    <outputs formatid="common">
        <console />`
	if logFile != "" {
		configTemplate += `<rollingfile type="size" filename="%s" maxsize="%d" maxrolls="1" />`
	}
	configTemplate += `</outputs>
    <formats>
        <format id="common" format="%%Date(%s) | UNIXUTILS | %%LEVEL | (%%RelFile:%%Line) | %%Msg%%n"/>
    </formats>
</seelog>`

	if logFile != "" {
		return fmt.Sprintf(configTemplate, strings.ToLower(logLevel), logFile, logFileMaxSize, logDateFormat)
	}
	return fmt.Sprintf(configTemplate, strings.ToLower(logLevel), logDateFormat)
}

// SetupLogger sets up the package logger from a level and an optional file.
func SetupLogger(logLevel, logFile string) error {
	if _, ok := seelog.LogLevelFromString(strings.ToLower(logLevel)); !ok {
		return fmt.Errorf("unknown log level: %q", logLevel)
	}

	logger, err := seelog.LoggerFromConfigAsString(buildLoggerConfig(logLevel, logFile))
	if err != nil {
		return err
	}
	log.SetupLogger(logger, logLevel)
	return nil
}

// SetupLoggerFromConfig sets up the package logger from log_level and log_file.
func SetupLoggerFromConfig(cfg Config) error {
	return SetupLogger(cfg.GetString("log_level"), cfg.GetString("log_file"))
}
