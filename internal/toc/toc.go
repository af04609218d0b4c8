// Package toc computes which content section a reader is currently in, for
// table-of-contents highlighting. Pure geometry: no history, safe to
// recompute on every scroll tick.
package toc

import "sort"

const (
	// ActivationThreshold is the distance from the viewport top (in px) a
	// section heading must pass before it counts as entered.
	ActivationThreshold = 120
	// BottomEpsilon absorbs sub-pixel rounding when deciding whether the
	// viewport has reached the end of the document.
	BottomEpsilon = 20
)

// Section is one rendered anchor. Top is the section's offset from the
// viewport top at the moment of measurement (negative once scrolled past).
// Sections are keyed by ID; titles are display-only and may collide.
type Section struct {
	ID  string
	Top float64
}

// Viewport is the scroll geometry at the moment of measurement.
type Viewport struct {
	ScrollY        float64
	Height         float64
	DocumentHeight float64
}

// AtBottom reports whether the viewport has scrolled to the end of the
// document, within BottomEpsilon.
func (v Viewport) AtBottom() bool {
	return v.Height+v.ScrollY >= v.DocumentHeight-BottomEpsilon
}

// Active returns the ID of the single active section: the lowest section
// whose top has crossed the activation threshold. At the document bottom
// the last section is active regardless of the threshold, so it is never
// left unhighlighted when no further section can cross. With no sections
// the active ID is empty.
func Active(sections []Section, view Viewport) string {
	if len(sections) == 0 {
		return ""
	}

	ordered := make([]Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Top < ordered[j].Top
	})

	if view.AtBottom() {
		return ordered[len(ordered)-1].ID
	}

	active := ""
	for _, section := range ordered {
		if section.Top <= ActivationThreshold {
			active = section.ID
		}
	}
	return active
}

// Tracker keeps the last computed active section so callers can detect
// transitions. It holds no other state.
type Tracker struct {
	active string
}

// Update recomputes the active section and reports whether it changed.
func (t *Tracker) Update(sections []Section, view Viewport) (string, bool) {
	next := Active(sections, view)
	changed := next != t.active
	t.active = next
	return next, changed
}

// Current returns the last computed active section ID.
func (t *Tracker) Current() string {
	return t.active
}
