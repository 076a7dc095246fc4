package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwipeAction(t *testing.T) {
	tests := []struct {
		name     string
		swipe    Swipe
		expected Action
	}{
		{
			name:     "left swipe past threshold is skip",
			swipe:    Swipe{Start: &Point{X: 200}, End: &Point{X: 140}},
			expected: ActionSkip,
		},
		{
			name:     "right swipe past threshold is like",
			swipe:    Swipe{Start: &Point{X: 100}, End: &Point{X: 180}},
			expected: ActionLike,
		},
		{
			name:     "exactly at threshold counts",
			swipe:    Swipe{Start: &Point{X: 100}, End: &Point{X: 150}},
			expected: ActionLike,
		},
		{
			name:     "short drag is ignored",
			swipe:    Swipe{Start: &Point{X: 100}, End: &Point{X: 130}},
			expected: ActionNone,
		},
		{
			name:     "missing end point is ignored",
			swipe:    Swipe{Start: &Point{X: 100}},
			expected: ActionNone,
		},
		{
			name:     "missing start point is ignored",
			swipe:    Swipe{End: &Point{X: 100}},
			expected: ActionNone,
		},
		{
			name:     "vertical drag is ignored",
			swipe:    Swipe{Start: &Point{X: 100, Y: 0}, End: &Point{X: 110, Y: 300}},
			expected: ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.swipe.Action(DefaultSwipeThresholdPx))
		})
	}
}

func TestFromKey(t *testing.T) {
	assert.Equal(t, ActionSkip, FromKey("ArrowLeft"))
	assert.Equal(t, ActionLike, FromKey("ArrowRight"))
	assert.Equal(t, ActionNone, FromKey("ArrowUp"))
	assert.Equal(t, ActionNone, FromKey("Enter"))
	assert.Equal(t, ActionNone, FromKey(""))
}

func TestFromButton(t *testing.T) {
	assert.Equal(t, ActionSkip, FromButton(ButtonSkip))
	assert.Equal(t, ActionLike, FromButton(ButtonLike))
	assert.Equal(t, ActionNone, FromButton("report"))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "skip", ActionSkip.String())
	assert.Equal(t, "like", ActionLike.String())
	assert.Equal(t, "none", ActionNone.String())
}
