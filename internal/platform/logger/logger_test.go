package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/config"
)

func TestSetupReturnsLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level falls back to info", "nonsense"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.logLevel})
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns attached logger", func(t *testing.T) {
		t.Parallel()
		ctx := WithLogger(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("returns nil without logger", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FromContext(context.Background()))
	})

	t.Run("default fallback", func(t *testing.T) {
		t.Parallel()
		assert.Same(t, base, FromContextOrDefault(context.Background(), base))
		assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	})

	t.Run("context logger wins over fallback", func(t *testing.T) {
		t.Parallel()
		other := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithLogger(context.Background(), base)
		assert.Same(t, base, FromContextOrDefault(ctx, other))
	})
}
