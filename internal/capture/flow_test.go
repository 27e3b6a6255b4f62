package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/testutil"
)

// fakeSource hands out numbered frames and records lifecycle calls
type fakeSource struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	captures int
}

func (f *fakeSource) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakeSource) Capture(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures++
	return []byte(fmt.Sprintf("frame-%d", f.captures)), nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeUploader records uploads and optionally fails them
type fakeUploader struct {
	mu      sync.Mutex
	uploads [][]byte
	err     error
}

func (f *fakeUploader) UploadPhoto(ctx context.Context, roomID model.RoomID, image []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, image)
	return f.err
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

// runFlow starts the flow and advances the fake clock through every
// countdown until it completes.
func runFlow(t *testing.T, flow *Flow, clock *clockwork.FakeClock, isGameMaster bool) error {
	t.Helper()

	done := make(chan error, 1)
	go func() {
		done <- flow.Run(context.Background(), "123456", isGameMaster)
	}()

	for {
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Millisecond):
			clock.Advance(Countdown)
		}
	}
}

func TestPlayerCapturesTwoShots(t *testing.T) {
	source := &fakeSource{}
	uploader := &fakeUploader{}
	clock := clockwork.NewFakeClock()
	flow := NewFlow(source, uploader, clock, testutil.NopLogger())

	err := runFlow(t, flow, clock, false)
	require.NoError(t, err)

	assert.Equal(t, 2, uploader.count(), "regular players upload exactly twice")
	assert.Equal(t, [][]byte{[]byte("frame-1"), []byte("frame-2")}, uploader.uploads)
	assert.True(t, source.closed, "camera is released after the sequence")
}

func TestGameMasterCapturesOneShot(t *testing.T) {
	source := &fakeSource{}
	uploader := &fakeUploader{}
	clock := clockwork.NewFakeClock()
	flow := NewFlow(source, uploader, clock, testutil.NopLogger())

	err := runFlow(t, flow, clock, true)
	require.NoError(t, err)

	assert.Equal(t, 1, uploader.count(), "the game master uploads exactly once")
	assert.True(t, source.closed)
}

func TestUploadFailureDoesNotAbortSequence(t *testing.T) {
	source := &fakeSource{}
	uploader := &fakeUploader{err: errors.New("backend down")}
	clock := clockwork.NewFakeClock()
	flow := NewFlow(source, uploader, clock, testutil.NopLogger())

	err := runFlow(t, flow, clock, false)

	require.Error(t, err, "upload failures are surfaced to the caller")
	assert.ErrorIs(t, err, ErrUploadFailed,
		"a finished sequence with lost uploads is distinguishable from an aborted one")
	assert.Equal(t, 2, uploader.count(), "both shots are still attempted")
	assert.Equal(t, 2, source.captures)
	assert.True(t, source.closed)
}

func TestCancelDuringCountdownReleasesCamera(t *testing.T) {
	source := &fakeSource{}
	uploader := &fakeUploader{}
	clock := clockwork.NewFakeClock()
	flow := NewFlow(source, uploader, clock, testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- flow.Run(ctx, "123456", false)
	}()

	clock.BlockUntil(1) // flow is in its first countdown
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUploadFailed,
			"an aborted sequence must not read as completed")
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not stop on cancellation")
	}
	assert.Zero(t, uploader.count())
	assert.True(t, source.closed)
}
