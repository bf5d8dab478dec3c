package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Observe(t *testing.T) {
	tests := []struct {
		name          string
		previous      int
		current       int
		wantState     ModalState
		wantMilestone int
	}{
		{name: "exact threshold", previous: 2, current: 3, wantState: Shown, wantMilestone: 3},
		{name: "jump over threshold", previous: 2, current: 5, wantState: Shown, wantMilestone: 3},
		{name: "jump over several thresholds", previous: 2, current: 15, wantState: Shown, wantMilestone: 14},
		{name: "no threshold crossed", previous: 5, current: 6, wantState: Hidden},
		{name: "no increase", previous: 6, current: 6, wantState: Hidden},
		{name: "already at threshold", previous: 3, current: 3, wantState: Hidden},
		{name: "streak reset", previous: 10, current: 1, wantState: Hidden},
		{name: "last threshold", previous: 364, current: 365, wantState: Shown, wantMilestone: 365},
		{name: "beyond last threshold", previous: 365, current: 400, wantState: Hidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, err := NewDetector(nil)
			require.NoError(t, err)

			milestone, reached := detector.Observe(tt.previous, tt.current)

			assert.Equal(t, tt.wantState, detector.State())
			assert.Equal(t, tt.wantState == Shown, reached)
			assert.Equal(t, tt.wantMilestone, milestone)
		})
	}
}

func TestDetector_Close(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)
	assert.False(t, detector.Shown(), "initial state is hidden")

	detector.Observe(2, 3)
	require.True(t, detector.Shown())

	detector.Close()
	assert.Equal(t, Hidden, detector.State())

	// dismissing twice is harmless
	detector.Close()
	assert.Equal(t, Hidden, detector.State())
}

func TestDetector_NoCrossingKeepsShown(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	detector.Observe(6, 7)
	detector.Observe(7, 8)

	assert.True(t, detector.Shown())
}

func TestDetector_CustomMilestones(t *testing.T) {
	detector, err := NewDetector([]int{1, 2})
	require.NoError(t, err)

	milestone, reached := detector.Observe(0, 1)
	assert.True(t, reached)
	assert.Equal(t, 1, milestone)
}

func TestValidateMilestones(t *testing.T) {
	tests := []struct {
		name       string
		milestones []int
		wantErr    bool
	}{
		{name: "defaults", milestones: DefaultMilestones},
		{name: "empty", milestones: []int{}, wantErr: true},
		{name: "zero", milestones: []int{0, 3}, wantErr: true},
		{name: "descending", milestones: []int{7, 3}, wantErr: true},
		{name: "duplicate", milestones: []int{3, 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMilestones(tt.milestones)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			assert.NoError(t, err)
		})
	}
}
