package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
		debugOn bool
		infoOn  bool
	}{
		{name: "prod default", env: "prod", infoOn: true},
		{name: "local default", env: "local", debugOn: true, infoOn: true},
		{name: "prod debug override", env: "prod", level: "debug", debugOn: true, infoOn: true},
		{name: "local warn override", env: "local", level: "warn"},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "invalid level", env: "prod", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := l.Core().Enabled(zapcore.InfoLevel); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewExample()
	stored := zap.NewExample().Named("request")

	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("expected fallback for empty context")
	}

	ctx := ContextWithLogger(context.Background(), stored)
	if got := FromContextOr(ctx, fallback); got != stored {
		t.Error("expected stored logger")
	}
	if got := FromContext(ctx); got != stored {
		t.Error("FromContext did not return stored logger")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext returned nil")
	}
}
