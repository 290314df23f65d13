// Package history resumes tracks where the listener left off and keeps the
// recent-play log.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/core"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
)

const (
	// minResume is the saved offset below which a track starts over.
	minResume = 5.0
	// endGuard is how close to the end a saved offset may be and still resume.
	endGuard = 10.0
)

// ProgressAPI is the server side of listening progress.
type ProgressAPI interface {
	HasToken() bool
	ResumePosition(ctx context.Context, trackID string) (float64, error)
	UpdateProgress(ctx context.Context, update api.ProgressUpdate) error
}

// Decision is the outcome of a resume lookup.
type Decision struct {
	Offset float64
	Notice string
}

// Resumer decides starting offsets and reports listening progress.
type Resumer struct {
	api ProgressAPI
}

// NewResumer creates a resumer over the given API.
func NewResumer(a ProgressAPI) *Resumer {
	return &Resumer{api: a}
}

// Decide looks up the saved offset for track. duration is the known length
// in seconds, 0 when unknown. ok is false when playback should start at 0.
func (r *Resumer) Decide(ctx context.Context, track core.Track, duration float64) (d Decision, ok bool) {
	if r == nil || r.api == nil || !r.api.HasToken() {
		return Decision{}, false
	}

	ts, err := r.api.ResumePosition(ctx, track.ID)
	if err != nil {
		if !errors.Is(err, mewzyerrors.ErrFeatureUnavailable) {
			slog.Debug("resume lookup failed", "track", track.ID, "error", err)
		}
		return Decision{}, false
	}

	if !ShouldResume(ts, duration) {
		return Decision{}, false
	}
	return Decision{Offset: ts, Notice: "Resumed at " + formatOffset(ts)}, true
}

// ShouldResume applies the resume rule: the offset must be past the first
// few seconds and, when the length is known, not within the last few.
func ShouldResume(offset, duration float64) bool {
	if offset <= minResume {
		return false
	}
	return duration <= 0 || duration-offset > endGuard
}

// Report pushes the listening offset for track. Failures are logged and
// otherwise ignored.
func (r *Resumer) Report(ctx context.Context, track core.Track, offset float64) {
	if r == nil || r.api == nil || !r.api.HasToken() {
		return
	}
	if err := r.api.UpdateProgress(ctx, api.NewProgressUpdate(track, offset)); err != nil {
		slog.Debug("progress push failed", "track", track.ID, "error", err)
	}
}

// formatOffset renders whole minutes and seconds, e.g. 75:03.
func formatOffset(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
