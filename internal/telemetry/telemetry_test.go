package telemetry_test

import (
	"context"
	"testing"

	"github.com/project-tktt/vacancy-hub/internal/telemetry"
)

func TestInit_WithoutCollector(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), "vacancy-hub", "")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	_, span := telemetry.Tracer("test").Start(context.Background(), "noop")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
