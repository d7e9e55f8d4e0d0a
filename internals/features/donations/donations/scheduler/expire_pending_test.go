package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type expirerFunc func(ctx context.Context, before time.Time) (int64, error)

func (f expirerFunc) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	return f(ctx, before)
}

func TestExpirePendingOnce(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var got time.Time
	repo := expirerFunc(func(_ context.Context, before time.Time) (int64, error) {
		got = before
		return 3, nil
	})

	n, err := ExpirePendingOnce(context.Background(), repo, 24*time.Hour, now)
	if err != nil || n != 3 {
		t.Fatalf("ExpirePendingOnce() = %d, %v", n, err)
	}
	if want := now.Add(-24 * time.Hour); !got.Equal(want) {
		t.Errorf("cutoff = %v, want %v", got, want)
	}
}

func TestExpirePendingOnceError(t *testing.T) {
	repo := expirerFunc(func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("db down")
	})
	if _, err := ExpirePendingOnce(context.Background(), repo, time.Hour, time.Now()); err == nil {
		t.Error("expected error")
	}
}

func TestStartPendingExpirySchedulerRejectsBadSchedule(t *testing.T) {
	if _, err := StartPendingExpiryScheduler(context.Background(), nil, time.Hour, "every so often"); err == nil {
		t.Error("expected error for an invalid schedule")
	}
}

func TestStartPendingExpirySchedulerDisabled(t *testing.T) {
	c, err := StartPendingExpiryScheduler(context.Background(), nil, 0, "@hourly")
	if err != nil || c != nil {
		t.Errorf("StartPendingExpiryScheduler() = %v, %v; want nil, nil", c, err)
	}
}

func TestStartPendingExpirySchedulerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := StartPendingExpiryScheduler(ctx, nil, time.Hour, "@every 1h")
	if err != nil || c == nil {
		t.Fatalf("StartPendingExpiryScheduler() = %v, %v", c, err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}
	cancel()
}
