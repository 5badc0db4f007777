package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	_, err := NewManager(Config{})
	require.Error(t, err)
}

func TestManagerSnapshotIsACopy(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	snap := m.Snapshot()
	snap.MaxRetries = 99
	snap.MaxConcurrency = 1

	require.Equal(t, DefaultConfig(), m.Snapshot())
}

func TestManagerConfigurePartialMerge(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	retries := 5
	require.NoError(t, m.Configure(Partial{MaxRetries: &retries}))

	got := m.Snapshot()
	require.Equal(t, 5, got.MaxRetries)
	require.Equal(t, DefaultMaxConcurrency, got.MaxConcurrency)
	require.Equal(t, DefaultBaseDelay, got.BaseDelay)
	require.Equal(t, DefaultMaxDelay, got.MaxDelay)
}

func TestManagerConfigureRejectsInvalidMerge(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	bad := 20 * time.Second
	err := m.Configure(Partial{BaseDelay: &bad})
	require.Error(t, err)
	require.Equal(t, DefaultConfig(), m.Snapshot(), "failed merge must not change state")
}

func TestManagerConfigureSwapsLimiterWhenIdle(t *testing.T) {
	m := newTestManager(t, fastConfig())

	concurrency := 2
	require.NoError(t, m.Configure(Partial{MaxConcurrency: &concurrency}))
	require.Equal(t, 2, m.Snapshot().MaxConcurrency)

	// The fresh limiter enforces the new bound.
	release := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			return m.Do(context.Background(), "op", func() error {
				<-release
				return nil
			})
		})
	}
	require.Eventually(t, func() bool {
		return m.Active() == 2 && m.Pending() == 2
	}, 2*time.Second, time.Millisecond)

	close(release)
	require.NoError(t, g.Wait())
}

func TestManagerConfigureFailsWhileInFlight(t *testing.T) {
	m := newTestManager(t, fastConfig())
	before := m.Snapshot()

	release := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		return m.Do(context.Background(), "op", func() error {
			<-release
			return nil
		})
	})
	require.Eventually(t, func() bool { return m.Active() == 1 }, 2*time.Second, time.Millisecond)

	concurrency := 9
	err := m.Configure(Partial{MaxConcurrency: &concurrency})

	var reconfigErr *ReconfigError
	require.ErrorAs(t, err, &reconfigErr)
	require.Equal(t, 1, reconfigErr.Active)
	require.Equal(t, before, m.Snapshot(), "conflict must leave config untouched")

	// Non-capacity fields may still change while operations run.
	retries := 7
	require.NoError(t, m.Configure(Partial{MaxRetries: &retries}))
	require.Equal(t, 7, m.Snapshot().MaxRetries)

	close(release)
	require.NoError(t, g.Wait())

	// Once idle, the capacity change goes through.
	require.NoError(t, m.Configure(Partial{MaxConcurrency: &concurrency}))
	require.Equal(t, 9, m.Snapshot().MaxConcurrency)
}

func TestManagerDoEnforcesCapacityAndCounts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrency = 3
	m := newTestManager(t, cfg)

	const total = 3 + 2
	release := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < total; i++ {
		g.Go(func() error {
			return m.Do(context.Background(), "op", func() error {
				<-release
				return nil
			})
		})
	}

	require.Eventually(t, func() bool {
		return m.Active() == 3 && m.Pending() == 2
	}, 2*time.Second, time.Millisecond)

	close(release)
	require.NoError(t, g.Wait())
	require.Equal(t, 0, m.Active())
	require.Equal(t, 0, m.Pending())
}

func TestManagerDoRetriesThroughBus(t *testing.T) {
	m := newTestManager(t, fastConfig())

	sink := &collector{}
	id := m.Bus().Subscribe(sink)
	defer m.Bus().Unsubscribe(id)

	calls := 0
	err := m.Do(context.Background(), "readfile", func() error {
		calls++
		if calls == 1 {
			return emfile("open")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)

	events := sink.snapshot()
	require.Len(t, events, 1)
	require.Equal(t, "readfile", events[0].Operation)
	require.Equal(t, 0, events[0].Attempt)
}

func TestManagerDoReleasesSlotOnCancelledWait(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrency = 1
	m := newTestManager(t, cfg)

	release := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		return m.Do(context.Background(), "op", func() error {
			<-release
			return nil
		})
	})
	require.Eventually(t, func() bool { return m.Active() == 1 }, 2*time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Do(ctx, "op", func() error { return nil })
	}()
	require.Eventually(t, func() bool { return m.Pending() == 1 }, 2*time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, 0, m.Pending())

	close(release)
	require.NoError(t, g.Wait())
}
