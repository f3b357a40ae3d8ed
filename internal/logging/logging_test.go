package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"taskpad/internal/logging"
)

func TestNew_DebugWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, true)
	log.Debug("request", "method", "GET")

	if !strings.Contains(buf.String(), "msg=request") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "method=GET") {
		t.Errorf("expected attribute, got %q", buf.String())
	}
}

func TestNew_NoDebugDiscards(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, false)
	log.Error("boom")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup(&buf, true)
	t.Cleanup(func() { logging.Setup(nil, false) })

	ctx := logging.WithRequestID(context.Background(), "abc-123")
	logging.FromContext(ctx).Debug("hello")

	if !strings.Contains(buf.String(), "request_id=abc-123") {
		t.Errorf("expected request id, got %q", buf.String())
	}
	if logging.RequestID(context.Background()) != "" {
		t.Error("expected empty request id on bare context")
	}
}
