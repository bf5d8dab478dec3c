// Package streak decides when a study streak crosses a celebration milestone
// and applies quiz submissions to streak counters.
package streak

import (
	"sync"

	"quizdash/internal/errors"
)

// DefaultMilestones are the streak lengths, in days, that trigger a celebration.
var DefaultMilestones = []int{3, 7, 14, 21, 30, 50, 75, 100, 150, 200, 365}

// ModalState is the visibility of the milestone celebration.
type ModalState int

const (
	Hidden ModalState = iota
	Shown
)

func (s ModalState) String() string {
	if s == Shown {
		return "shown"
	}

	return "hidden"
}

// ValidateMilestones checks that thresholds are positive and strictly ascending.
func ValidateMilestones(milestones []int) error {
	if len(milestones) == 0 {
		return errors.New("milestones must not be empty")
	}

	for i, m := range milestones {
		if m <= 0 {
			return errors.Errorf("milestone %d must be positive", m)
		}
		if i > 0 && m <= milestones[i-1] {
			return errors.Errorf("milestones must be strictly ascending: %d after %d", m, milestones[i-1])
		}
	}

	return nil
}

// Crossed reports whether the streak grew past at least one threshold,
// that is current > previous and previous < m <= current for some m.
// The highest such threshold is returned.
func Crossed(milestones []int, previous, current int) (int, bool) {
	if current <= previous {
		return 0, false
	}

	highest, found := 0, false
	for _, m := range milestones {
		if previous < m && m <= current {
			highest, found = m, true
		}
	}

	return highest, found
}

// Detector holds the Hidden/Shown state of one client's milestone celebration.
type Detector struct {
	mu         sync.Mutex
	milestones []int
	state      ModalState
}

// NewDetector creates a detector in the Hidden state. Nil milestones select DefaultMilestones.
func NewDetector(milestones []int) (*Detector, error) {
	if milestones == nil {
		milestones = DefaultMilestones
	}

	if err := ValidateMilestones(milestones); err != nil {
		return nil, err
	}

	return &Detector{milestones: append([]int(nil), milestones...)}, nil
}

// Observe evaluates one streak transition. A crossing moves the detector to Shown.
// Without a crossing the state is left as is.
func (d *Detector) Observe(previous, current int) (milestone int, reached bool) {
	milestone, reached = Crossed(d.milestones, previous, current)
	if !reached {
		return 0, false
	}

	d.mu.Lock()
	d.state = Shown
	d.mu.Unlock()

	return milestone, true
}

// Close dismisses the celebration.
func (d *Detector) Close() {
	d.mu.Lock()
	d.state = Hidden
	d.mu.Unlock()
}

// State returns the current visibility.
func (d *Detector) State() ModalState {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// Shown reports whether the celebration should be displayed.
func (d *Detector) Shown() bool {
	return d.State() == Shown
}
