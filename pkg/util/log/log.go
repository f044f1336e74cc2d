// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package log is the package-level logger used across unixutils. It wraps a
// seelog logger and buffers anything logged before SetupLogger is called.
package log

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cihub/seelog"
)

var (
	logger *seelogWrapper

	// Capability detection may run before the logger is configured (for
	// instance from a package-level Default() in a test binary). Those lines
	// are kept here and replayed once a logger is installed.
	logsBuffer           = []func(){}
	bufferLogsBeforeInit = true
	bufferMutex          sync.Mutex
	defaultStackDepth    = 3
)

type seelogWrapper struct {
	inner seelog.LoggerInterface
	level seelog.LogLevel
	l     sync.RWMutex
}

// SetupLogger installs l as the package logger with the given minimum level
// and flushes any buffered log lines through it.
func SetupLogger(l seelog.LoggerInterface, level string) {
	lvl, ok := seelog.LogLevelFromString(strings.ToLower(level))
	if !ok {
		lvl = seelog.InfoLvl
	}

	// Exported helpers add two frames between the caller and seelog.
	l.SetAdditionalStackDepth(defaultStackDepth) //nolint:errcheck

	logger = &seelogWrapper{
		inner: l,
		level: lvl,
	}

	bufferMutex.Lock()
	bufferLogsBeforeInit = false
	defer bufferMutex.Unlock()
	for _, logLine := range logsBuffer {
		logLine()
	}
	logsBuffer = []func(){}
}

func addLogToBuffer(logHandle func()) {
	bufferMutex.Lock()
	defer bufferMutex.Unlock()

	logsBuffer = append(logsBuffer, logHandle)
}

func (sw *seelogWrapper) shouldLog(level seelog.LogLevel) bool {
	sw.l.RLock()
	defer sw.l.RUnlock()

	return level >= sw.level
}

func (sw *seelogWrapper) changeLogLevel(level string) error {
	lvl, ok := seelog.LogLevelFromString(strings.ToLower(level))
	if !ok {
		return fmt.Errorf("bad log level: %q", level)
	}

	sw.l.Lock()
	sw.level = lvl
	sw.l.Unlock()
	return nil
}

func (sw *seelogWrapper) getLogLevel() seelog.LogLevel {
	sw.l.RLock()
	defer sw.l.RUnlock()

	return sw.level
}

func (sw *seelogWrapper) write(level seelog.LogLevel, s string) error {
	sw.l.RLock()
	defer sw.l.RUnlock()

	switch level {
	case seelog.TraceLvl:
		sw.inner.Trace(s)
	case seelog.DebugLvl:
		sw.inner.Debug(s)
	case seelog.InfoLvl:
		sw.inner.Info(s)
	case seelog.WarnLvl:
		return sw.inner.Warn(s)
	case seelog.ErrorLvl:
		return sw.inner.Error(s)
	case seelog.CriticalLvl:
		return sw.inner.Critical(s)
	}
	return nil
}

func ready() bool {
	return logger != nil && logger.inner != nil
}

func logFormat(level seelog.LogLevel, bufferFunc func(), format string, params ...interface{}) {
	if ready() && logger.shouldLog(level) {
		logger.write(level, fmt.Sprintf(format, params...)) //nolint:errcheck
	} else if bufferLogsBeforeInit && !ready() {
		addLogToBuffer(bufferFunc)
	}
}

func logFormatWithError(level seelog.LogLevel, bufferFunc func(), fallbackStderr bool, format string, params ...interface{}) error {
	msg := fmt.Sprintf(format, params...)
	if ready() && logger.shouldLog(level) {
		if err := logger.write(level, msg); err != nil {
			return err
		}
		return errors.New(msg)
	} else if bufferLogsBeforeInit && !ready() {
		addLogToBuffer(bufferFunc)
	}
	if fallbackStderr && !ready() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", level.String(), msg)
	}
	return errors.New(msg)
}

// Tracef logs with format at the trace level
func Tracef(format string, params ...interface{}) {
	logFormat(seelog.TraceLvl, func() { Tracef(format, params...) }, format, params...)
}

// Debugf logs with format at the debug level
func Debugf(format string, params ...interface{}) {
	logFormat(seelog.DebugLvl, func() { Debugf(format, params...) }, format, params...)
}

// Infof logs with format at the info level
func Infof(format string, params ...interface{}) {
	logFormat(seelog.InfoLvl, func() { Infof(format, params...) }, format, params...)
}

// Warnf logs with format at the warn level and returns an error containing the formatted log message
func Warnf(format string, params ...interface{}) error {
	return logFormatWithError(seelog.WarnLvl, func() { Warnf(format, params...) }, false, format, params...)
}

// Errorf logs with format at the error level and returns an error containing the formatted log message
func Errorf(format string, params ...interface{}) error {
	return logFormatWithError(seelog.ErrorLvl, func() { Errorf(format, params...) }, false, format, params...)
}

// Criticalf logs with format at the critical level and returns an error containing the formatted log message
func Criticalf(format string, params ...interface{}) error {
	return logFormatWithError(seelog.CriticalLvl, func() { Criticalf(format, params...) }, true, format, params...)
}

// Flush flushes the underlying inner log
func Flush() {
	if ready() {
		logger.inner.Flush()
	}
}

// GetLogLevel returns the current log level
func GetLogLevel() (seelog.LogLevel, error) {
	if ready() {
		return logger.getLogLevel(), nil
	}
	return seelog.InfoLvl, errors.New("cannot get loglevel: logger not initialized")
}

// ChangeLogLevel changes the minimum level of the installed logger.
func ChangeLogLevel(level string) error {
	if ready() {
		return logger.changeLogLevel(level)
	}
	return errors.New("cannot change loglevel: logger not initialized")
}
