package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZap_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "test")

	log.Info("chunk submitted", "chunk", 2, "error", errors.New("boom"), zap.String("origin", "ets.kz"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["component"])
	assert.EqualValues(t, 2, fields["chunk"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "ets.kz", fields["origin"])
}

func TestFromZap_DanglingKey(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	FromZap(zap.New(core)).Warn("odd", "lonely")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "lonely", logs.All()[0].ContextMap()["!BADKEY"])
}

func TestNew_InvalidEncoding(t *testing.T) {
	_, err := New(Config{Encoding: "xml"})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestNew_Defaults(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, log.With("k", "v"))
}
