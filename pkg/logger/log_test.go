package logger

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelMapping(t *testing.T) {
	cases := map[Level]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		"WARN":     zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		"bogus":    zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, in.zapLevel(), "level %q", in)
	}
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core)).WithFields(NewField("instrument", "BTC-USD"))

	l.Info("order rested", NewField("order_id", "o-1"))
	l.Error(errors.New("boom"), NewField("op", "submit"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "order rested", entries[0].Message)
	assert.Equal(t, "BTC-USD", entries[0].ContextMap()["instrument"])
	assert.Equal(t, "o-1", entries[0].ContextMap()["order_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Message)
	assert.NotEmpty(t, entries[1].Stack)
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Debug("ignored")
	l.Error(errors.New("ignored"))
	assert.NoError(t, l.Sync())
}
