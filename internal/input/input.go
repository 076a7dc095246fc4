// Package input unifies the three ways a user can act on a candidate —
// swipe gestures, arrow keys, and buttons — into a single Action value, so
// the discovery loop has exactly one decision path regardless of device.
package input

// Action is a user decision on the current candidate.
type Action int

const (
	ActionNone Action = iota
	ActionSkip
	ActionLike
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionLike:
		return "like"
	default:
		return "none"
	}
}

// DefaultSwipeThresholdPx is the minimum horizontal travel, in pixels, for a
// touch gesture to register as a swipe.
const DefaultSwipeThresholdPx = 50

// Point is a touch coordinate.
type Point struct {
	X float64
	Y float64
}

// Swipe is a touch gesture. Both endpoints must be present for the gesture
// to count; a tap that never produced a move event leaves End nil.
type Swipe struct {
	Start *Point
	End   *Point
}

// Action classifies the gesture against the threshold. Leftward travel is a
// skip, rightward a like, anything shorter is no action at all.
func (s Swipe) Action(thresholdPx float64) Action {
	if s.Start == nil || s.End == nil {
		return ActionNone
	}
	dx := s.End.X - s.Start.X
	switch {
	case dx <= -thresholdPx:
		return ActionSkip
	case dx >= thresholdPx:
		return ActionLike
	default:
		return ActionNone
	}
}

// FromKey maps keyboard input to an action. Left arrow skips, right arrow
// likes; every other key is ignored.
func FromKey(key string) Action {
	switch key {
	case "ArrowLeft":
		return ActionSkip
	case "ArrowRight":
		return ActionLike
	default:
		return ActionNone
	}
}

// Button identifiers on the candidate card.
const (
	ButtonSkip = "skip"
	ButtonLike = "like"
)

// FromButton maps a card button press to an action.
func FromButton(button string) Action {
	switch button {
	case ButtonSkip:
		return ActionSkip
	case ButtonLike:
		return ActionLike
	default:
		return ActionNone
	}
}
