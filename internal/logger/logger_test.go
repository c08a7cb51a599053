package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	output := buf.String()
	if output == "" {
		t.Error("Expected log output, got empty string")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
}

func TestWithContext(t *testing.T) {
	log := New()
	ctx := context.Background()

	ctxWithLogger := WithContext(ctx, log)

	if ctxWithLogger.Value(LoggerKey) == nil {
		t.Error("Expected logger in context, got nil")
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestForRun(t *testing.T) {
	buf := &bytes.Buffer{}
	log := ForRun(NewWithWriter(buf), "run-123")

	log.Info().Msg("tagged")

	if !strings.Contains(buf.String(), "run-123") {
		t.Errorf("Expected output to contain run id, got: %s", buf.String())
	}
}

func TestForActivity(t *testing.T) {
	buf := &bytes.Buffer{}
	log := ForActivity(NewWithWriter(buf), "bronze", "load_accounts")

	log.Info().Msg("tagged")

	output := buf.String()
	if !strings.Contains(output, "bronze") || !strings.Contains(output, "load_accounts") {
		t.Errorf("Expected output to contain stage and activity, got: %s", output)
	}
}
