package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestFanOutIsolatesFailures(t *testing.T) {
	svc := NewService([]int64{1}, nil)

	var attempted []int64
	report := svc.FanOut(context.Background(), []int64{10, 20, 30}, func(_ context.Context, id int64, fallback bool) error {
		attempted = append(attempted, id)
		if fallback {
			t.Fatal("fallback flag must stay unset for a non-empty recipient set")
		}
		if id == 20 {
			return fmt.Errorf("chat %d unreachable", id)
		}
		return nil
	})

	if len(attempted) != 3 {
		t.Fatalf("every recipient must be attempted, got %v", attempted)
	}
	if len(report.Delivered) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", report.Delivered)
	}
	if _, ok := report.Failed[20]; !ok {
		t.Fatalf("expected failure recorded for 20, got %v", report.Failed)
	}
	if report.UsedFallback {
		t.Fatal("fallback must not trigger for a non-empty recipient set")
	}
}

func TestFanOutEmptySetFallsBackToOwners(t *testing.T) {
	svc := NewService([]int64{100, 101}, nil)

	var attempted []int64
	report := svc.FanOut(context.Background(), nil, func(_ context.Context, id int64, fallback bool) error {
		attempted = append(attempted, id)
		if !fallback {
			t.Fatal("deliver func must be told the owners are a fallback audience")
		}
		return nil
	})

	if !report.UsedFallback {
		t.Fatal("expected owner fallback")
	}
	if len(attempted) != 2 || attempted[0] != 100 || attempted[1] != 101 {
		t.Fatalf("expected owners to be notified, got %v", attempted)
	}
}

func TestFanOutAllFailed(t *testing.T) {
	svc := NewService(nil, nil)

	report := svc.FanOut(context.Background(), []int64{5}, func(context.Context, int64, bool) error {
		return errors.New("boom")
	})

	if !report.AllFailed() {
		t.Fatal("expected AllFailed report")
	}
}
