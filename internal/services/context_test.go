package services_test

import (
	"context"
	"testing"

	"mouthpiece/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "analyze")
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithLogicalName(ctx, "greeting")

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "analyze" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if name, ok := services.LogicalNameFromContext(ctx); !ok || name != "greeting" {
		t.Fatalf("unexpected logical name: %v %v", name, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
