package pricing

import (
	"fmt"
	"sort"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusRented    Status = "rented"
	StatusPreparing Status = "preparing"
)

// Availability is the answer for a candidate window.
type Availability struct {
	Available         bool       `json:"available"`
	NextAvailableDate *time.Time `json:"nextAvailableDate"`
}

// CheckAvailability rejects the candidate if it overlaps any existing window.
// NextAvailableDate is the earliest end among the overlapping windows.
func CheckAvailability(existing []Window, candidate Window) Availability {
	var next *time.Time
	for _, w := range existing {
		if !candidate.Overlaps(w) {
			continue
		}
		if next == nil || w.End.Before(*next) {
			end := w.End
			next = &end
		}
	}
	if next == nil {
		return Availability{Available: true}
	}
	return Availability{Available: false, NextAvailableDate: next}
}

// StatusReport is the display status of a product at a given instant.
type StatusReport struct {
	Status            Status     `json:"currentStatus"`
	Message           string     `json:"statusMessage"`
	NextAvailableDate *time.Time `json:"nextAvailableDate"`
}

// CurrentStatus probes the windows against now rather than a candidate.
// A window containing now means rented; a window starting within horizon
// means preparing.
func CurrentStatus(existing []Window, now time.Time, horizon time.Duration) StatusReport {
	sorted := sortedWindows(existing)

	for i, w := range sorted {
		if w.Contains(now) {
			end := runEnd(sorted, i)
			return StatusReport{
				Status:            StatusRented,
				Message:           fmt.Sprintf("Currently rented until %s", formatDay(end)),
				NextAvailableDate: &end,
			}
		}
	}

	limit := now.Add(horizon)
	for i, w := range sorted {
		if w.Start.After(now) && !w.Start.After(limit) {
			end := runEnd(sorted, i)
			return StatusReport{
				Status:            StatusPreparing,
				Message:           fmt.Sprintf("Preparing for a rental starting %s", formatDay(w.Start)),
				NextAvailableDate: &end,
			}
		}
	}

	return StatusReport{Status: StatusAvailable, Message: "Available now"}
}

func sortedWindows(ws []Window) []Window {
	out := make([]Window, len(ws))
	copy(out, ws)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// runEnd follows back-to-back windows from index i and returns where the run
// finishes.
func runEnd(sorted []Window, i int) time.Time {
	end := sorted[i].End
	for _, w := range sorted[i+1:] {
		if w.Start.After(end) {
			break
		}
		if w.End.After(end) {
			end = w.End
		}
	}
	return end
}

func formatDay(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}
