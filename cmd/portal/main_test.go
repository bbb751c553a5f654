package main

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env        string
		debugOn    bool
		wantHandle string
	}{
		{env: "dev", debugOn: true, wantHandle: "*slog.TextHandler"},
		{env: "", debugOn: true, wantHandle: "*slog.TextHandler"},
		{env: "staging", debugOn: true, wantHandle: "*slog.JSONHandler"},
		{env: "prod", debugOn: false, wantHandle: "*slog.JSONHandler"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := setupLogger(tt.env)
			if got := log.Enabled(context.Background(), slog.LevelDebug); got != tt.debugOn {
				t.Fatalf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := typeName(log.Handler()); got != tt.wantHandle {
				t.Fatalf("handler = %s, want %s", got, tt.wantHandle)
			}
		})
	}
}

func typeName(h slog.Handler) string {
	switch h.(type) {
	case *slog.TextHandler:
		return "*slog.TextHandler"
	case *slog.JSONHandler:
		return "*slog.JSONHandler"
	}
	return "other"
}
