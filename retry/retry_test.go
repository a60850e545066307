package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/bantuaku/peraturan-ingest/logger"
)

func TestDo_SucceedsWithoutRetry(t *testing.T) {
	log := logger.Default()
	calls := 0

	err := Do(context.Background(), log, "test-op", func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	log := logger.Default()
	calls := 0

	err := Do(context.Background(), log, "test-op", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls before success, got %d", calls)
	}
}

func TestDo_StopsImmediatelyOnContextCancellation(t *testing.T) {
	log := logger.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, log, "test-op", func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the first attempt to still run before the cancellation check, got %d calls", calls)
	}
}
