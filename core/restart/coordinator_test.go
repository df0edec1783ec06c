package restart

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPoll = 20 * time.Millisecond

func newTestCoordinator(dir string, port int, stop func()) *Coordinator {
	return New(Config{Port: port, Dir: dir, PollInterval: testPoll, ClaimDelay: testPoll}, stop, nil)
}

func waitClosed(t *testing.T, ch <-chan struct{}, within time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(within):
		t.Fatalf("not closed within %s", within)
	}
}

func TestMarkPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/webboot/boot", "boot8080.mark"), MarkPath(DefaultMarkDir, 8080))
	assert.Equal(t, filepath.Join("x", "boot0.mark"), MarkPath("x", 0))
}

func TestClaim_CreatesMarkFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "boot")
	c := New(Config{Port: 8080, Dir: dir, InstanceID: "instance-1"}, nil, nil)

	require.NoError(t, c.Claim(context.Background()))

	info, err := os.Stat(c.Path())
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(c.Snapshot()))

	content, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	assert.Equal(t, "instance-1\n", string(content))
}

func TestClaim_TouchesExistingMarkFile(t *testing.T) {
	dir := t.TempDir()
	path := MarkPath(dir, 8080)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	c := newTestCoordinator(dir, 8080, nil)
	start := time.Now()
	require.NoError(t, c.Claim(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), testPoll, "waits the claim delay")
	assert.True(t, c.Snapshot().After(old))
}

func TestClaim_CancelledDuringDelay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(MarkPath(dir, 8080), nil, 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{Port: 8080, Dir: dir, ClaimDelay: time.Minute}, nil, nil)
	err := c.Claim(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "8080")
}

func TestCoordinator_StopsWhenMarkDeleted(t *testing.T) {
	dir := t.TempDir()
	var stops atomic.Int32
	c := newTestCoordinator(dir, 9090, func() { stops.Add(1) })
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, Evict(dir, 9090))

	waitClosed(t, c.Done(), time.Second)
	assert.ErrorIs(t, c.Err(), ErrSuperseded)
	assert.Equal(t, int32(1), stops.Load())
}

func TestCoordinator_StopsWhenMarkTouched(t *testing.T) {
	dir := t.TempDir()
	var stops atomic.Int32
	c := newTestCoordinator(dir, 9091, func() { stops.Add(1) })
	require.NoError(t, c.Start(context.Background()))

	later := c.Snapshot().Add(time.Second)
	require.NoError(t, os.Chtimes(c.Path(), later, later))

	waitClosed(t, c.Done(), time.Second)
	assert.ErrorIs(t, c.Err(), ErrSuperseded)
	assert.Equal(t, int32(1), stops.Load())
}

func TestCoordinator_StopJoinsWithoutStopping(t *testing.T) {
	dir := t.TempDir()
	var stops atomic.Int32
	c := newTestCoordinator(dir, 9092, func() { stops.Add(1) })
	require.NoError(t, c.Start(context.Background()))

	c.Stop()

	waitClosed(t, c.Done(), 10*time.Millisecond)
	assert.NoError(t, c.Err())
	assert.Zero(t, stops.Load())
	_, err := os.Stat(c.Path())
	assert.NoError(t, err, "mark file is kept for the next instance")
}

func TestCoordinator_ContextCancelEndsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestCoordinator(t.TempDir(), 9093, nil)
	require.NoError(t, c.Start(ctx))

	cancel()

	waitClosed(t, c.Done(), time.Second)
	assert.NoError(t, c.Err())
}

func TestCoordinator_StartTwice(t *testing.T) {
	c := newTestCoordinator(t.TempDir(), 9094, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.Error(t, c.Start(context.Background()))
}

func TestCoordinator_StopBeforeStart(t *testing.T) {
	c := newTestCoordinator(t.TempDir(), 9095, nil)
	assert.NotPanics(t, c.Stop)
	assert.Nil(t, c.Done())
}

// A second instance on the same port evicts the first one.
func TestCoordinator_NewerInstanceSupersedes(t *testing.T) {
	dir := t.TempDir()
	firstStopped := make(chan struct{})
	first := newTestCoordinator(dir, 8080, func() { close(firstStopped) })
	require.NoError(t, first.Start(context.Background()))

	time.Sleep(500 * time.Millisecond)

	var secondStops atomic.Int32
	second := newTestCoordinator(dir, 8080, func() { secondStops.Add(1) })
	require.NoError(t, second.Start(context.Background()))
	defer second.Stop()

	waitClosed(t, firstStopped, 4*testPoll+500*time.Millisecond)
	waitClosed(t, first.Done(), time.Second)
	assert.ErrorIs(t, first.Err(), ErrSuperseded)

	time.Sleep(3 * testPoll)
	assert.Zero(t, secondStops.Load())
	assert.NoError(t, second.Err())
}

func TestEvict_MissingIsNotAnError(t *testing.T) {
	assert.NoError(t, Evict(t.TempDir(), 1234))
}
