// Package capture drives the timed photo capture sequence: countdown,
// frame grab, upload, repeated once more for regular players.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Countdown is the fixed delay before each shot
const Countdown = 2 * time.Second

// ErrUploadFailed marks a sequence that captured every shot but could
// not deliver one or more uploads. The local sequence still counts as
// completed for the player.
var ErrUploadFailed = errors.New("photo upload failed")

// FrameSource provides still frames. Implementations own the
// underlying device or file handle; Close releases it.
type FrameSource interface {
	// Start acquires the source. It must be called before Capture.
	Start(ctx context.Context) error
	// Capture grabs one still frame as encoded image bytes
	Capture(ctx context.Context) ([]byte, error)
	// Close releases the source
	Close() error
}

// Uploader submits captured photos
type Uploader interface {
	UploadPhoto(ctx context.Context, roomID model.RoomID, image []byte) error
}

// Flow runs the capture sequence for one round
type Flow struct {
	source   FrameSource
	uploader Uploader
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewFlow creates a capture flow
func NewFlow(source FrameSource, uploader Uploader, clock clockwork.Clock, logger *slog.Logger) *Flow {
	return &Flow{
		source:   source,
		uploader: uploader,
		clock:    clock,
		logger:   logger.With(slog.String("component", "capture")),
	}
}

// Run executes the capture sequence: a 2 second countdown before each
// shot, one shot for the game master, two for everyone else. The
// source is always released before returning. Upload failures do not
// abort the sequence; they are logged and returned wrapped in
// ErrUploadFailed so the caller can tell a finished-but-lossy sequence
// from an aborted one.
func (f *Flow) Run(ctx context.Context, roomID model.RoomID, isGameMaster bool) error {
	shots := 2
	if isGameMaster {
		shots = 1
	}

	if err := f.source.Start(ctx); err != nil {
		return fmt.Errorf("failed to acquire camera: %w", err)
	}
	defer func() {
		if err := f.source.Close(); err != nil {
			f.logger.Warn("failed to release camera", slog.Any("error", err))
		}
	}()

	var uploadErrs []error
	for shot := 1; shot <= shots; shot++ {
		if err := f.countdown(ctx); err != nil {
			return err
		}

		frame, err := f.source.Capture(ctx)
		if err != nil {
			return fmt.Errorf("capture failed on shot %d: %w", shot, err)
		}

		if err := f.uploader.UploadPhoto(ctx, roomID, frame); err != nil {
			f.logger.Error("photo upload failed",
				slog.Int("shot", shot),
				slog.Any("error", err))
			uploadErrs = append(uploadErrs, fmt.Errorf("shot %d: %w", shot, err))
			continue
		}
		f.logger.Info("photo uploaded", slog.Int("shot", shot), slog.Int("of", shots))
	}

	if len(uploadErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrUploadFailed, errors.Join(uploadErrs...))
	}
	return nil
}

func (f *Flow) countdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.clock.After(Countdown):
		return nil
	}
}
