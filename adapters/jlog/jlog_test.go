package jlog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/log"
	"github.com/stretchr/testify/require"

	workflow "github.com/lucasmqar/vercflow-sub003"
	"github.com/lucasmqar/vercflow-sub003/adapters/jlog"
)

func TestDebug(t *testing.T) {
	buf := bytes.NewBuffer([]byte{})
	jLogger := log.NewCmdLogger(buf, true)
	log.SetLoggerForTesting(t, jLogger)

	logger := jlog.New()
	logger.Debug(context.Background(), "entity transitioned", workflow.MKV{"entity_id": "abc"})

	require.Contains(t, buf.String(), "entity transitioned")
	require.Contains(t, buf.String(), "abc")
}

func TestError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{})
	jLogger := log.NewCmdLogger(buf, true)
	log.SetLoggerForTesting(t, jLogger)

	logger := jlog.New()
	logger.Error(context.Background(), errors.New("store unavailable"))

	require.Contains(t, buf.String(), "store unavailable")
}
