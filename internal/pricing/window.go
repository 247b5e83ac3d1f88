package pricing

import "time"

// Window is a half-open reservation interval [Start, End).
type Window struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two windows share any instant. Windows that only
// touch at a boundary do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
