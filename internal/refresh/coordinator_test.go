package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SingleRefresh(t *testing.T) {
	var runs int32
	c := NewCoordinator(func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, nil)

	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs), "sequential refreshes each run a pass")
}

func TestCoordinator_ConcurrentTriggersCoalesce(t *testing.T) {
	var runs int32
	started := make(chan struct{})
	release := make(chan struct{})

	c := NewCoordinator(func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		close(started)
		<-release
		return nil
	}, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = c.Refresh(context.Background())
	}()

	<-started
	assert.True(t, c.Refreshing())

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = c.Refresh(context.Background())
	}()

	// give the second caller time to join the in-flight pass
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs), "second trigger must not start a second pass")
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.False(t, c.Refreshing())
}

func TestCoordinator_JoinedCallerSeesInflightError(t *testing.T) {
	boom := errors.New("transport failed")
	started := make(chan struct{})
	release := make(chan struct{})

	c := NewCoordinator(func(ctx context.Context) error {
		close(started)
		<-release
		return boom
	}, nil)

	var joined error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.Refresh(context.Background())
	}()
	go func() {
		defer wg.Done()
		<-started
		joined = c.Refresh(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, joined, boom)
}

func TestCoordinator_FailureClearsRefreshingState(t *testing.T) {
	c := NewCoordinator(func(ctx context.Context) error {
		return errors.New("nope")
	}, nil)

	require.Error(t, c.Refresh(context.Background()))
	assert.False(t, c.Refreshing(), "no refreshing indicator lingers after failure")

	// a later refresh starts a fresh pass
	require.Error(t, c.Refresh(context.Background()))
}

func TestCoordinator_OnStartFiresOncePerPass(t *testing.T) {
	var starts int32
	release := make(chan struct{})
	started := make(chan struct{})

	c := NewCoordinator(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, func() {
		atomic.AddInt32(&starts, 1)
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = c.Refresh(context.Background()) }()
	go func() {
		defer wg.Done()
		<-started
		_ = c.Refresh(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&starts))
}

func TestCoordinator_WaiterContextCancelAbandonsWaitOnly(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCoordinator(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, nil)

	go func() { _ = c.Refresh(context.Background()) }()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, c.Refreshing(), "in-flight refresh keeps running")

	close(release)
}

func TestDebouncer_TrailingEdgeCollapse(t *testing.T) {
	var runs int32
	d := NewDebouncer(30*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
	})

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs), "nothing fires inside the window")

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 1
	}, time.Second, 5*time.Millisecond, "burst collapses into one trailing-edge run")
}

func TestDebouncer_Stop(t *testing.T) {
	var runs int32
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	d.Trigger()
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
}

func TestConflictTracker(t *testing.T) {
	tr := NewConflictTracker()
	assert.False(t, tr.IsStale("//depot/a.txt"))

	tr.Mark("//depot/a.txt", "//depot/b.txt")
	assert.True(t, tr.IsStale("//depot/a.txt"))
	assert.ElementsMatch(t, []string{"//depot/a.txt", "//depot/b.txt"}, tr.Stale())

	tr.Clear()
	assert.False(t, tr.IsStale("//depot/a.txt"))
	assert.Empty(t, tr.Stale())
}
