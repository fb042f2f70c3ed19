package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = l.Sync()
		})
	}
}

func TestNewLogger_UnknownEnv(t *testing.T) {
	if _, err := NewLogger("staging", ""); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	ctx := ContextWithLogger(context.Background(), l)
	FromContext(ctx).Info("hello")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}

	// No logger in context: no-op, must not panic.
	FromContext(context.Background()).Info("dropped")
}

func TestFromContextOr(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	def := zap.New(core)

	FromContextOr(context.Background(), def).Info("fallback")
	if logs.Len() != 1 {
		t.Fatalf("expected fallback logger to be used, got %d entries", logs.Len())
	}

	FromContextOr(context.Background(), nil).Info("dropped")
}
