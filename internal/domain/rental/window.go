package rental

import (
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
)

// Window is a half-open rental interval [Start, End). Two windows that only
// touch at an endpoint do not overlap, so back-to-back rentals are allowed.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates and normalizes a rental window to UTC.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, domain.NewInvalidWindowError("start and end times are required")
	}
	if !end.After(start) {
		return Window{}, domain.NewInvalidWindowError("end time must be after start time")
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// Days returns the chargeable duration in whole days, rounded up, minimum 1.
func (w Window) Days() int64 {
	d := w.End.Sub(w.Start)
	days := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// Duration returns the raw window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
