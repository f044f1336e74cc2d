// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package log

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/cihub/seelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger() {
	logger = nil
	bufferMutex.Lock()
	bufferLogsBeforeInit = true
	logsBuffer = []func(){}
	bufferMutex.Unlock()
}

func newTestLogger(t *testing.T, b *bytes.Buffer) (seelog.LoggerInterface, *bufio.Writer) {
	w := bufio.NewWriter(b)
	l, err := seelog.LoggerFromWriterWithMinLevelAndFormat(w, seelog.TraceLvl, "[%LEVEL] %Msg\n")
	require.NoError(t, err)
	return l, w
}

func TestBufferedBeforeSetup(t *testing.T) {
	resetLogger()
	t.Cleanup(resetLogger)

	Infof("probe says %s", "hello")
	Debugf("dropped at info level")

	var b bytes.Buffer
	l, w := newTestLogger(t, &b)
	SetupLogger(l, "info")
	l.Flush()
	w.Flush()

	assert.Contains(t, b.String(), "[INFO] probe says hello")
	assert.NotContains(t, b.String(), "dropped at info level")
}

func TestLevelFiltering(t *testing.T) {
	resetLogger()
	t.Cleanup(resetLogger)

	var b bytes.Buffer
	l, w := newTestLogger(t, &b)
	SetupLogger(l, "warn")

	Infof("not shown")
	err := Warnf("queue %d", 3)
	require.Error(t, err)
	assert.Equal(t, "queue 3", err.Error())

	l.Flush()
	w.Flush()
	assert.NotContains(t, b.String(), "not shown")
	assert.Contains(t, b.String(), "[WARN] queue 3")

	require.NoError(t, ChangeLogLevel("debug"))
	lvl, err := GetLogLevel()
	require.NoError(t, err)
	assert.Equal(t, seelog.LogLevel(seelog.DebugLvl), lvl)
	assert.Error(t, ChangeLogLevel("verbose"))
}

func TestErrorfWithoutLogger(t *testing.T) {
	resetLogger()
	t.Cleanup(resetLogger)

	err := Errorf("ioctl failed: %s", "EBADF")
	require.Error(t, err)
	assert.Equal(t, "ioctl failed: EBADF", err.Error())

	_, err = GetLogLevel()
	assert.Error(t, err)
}
