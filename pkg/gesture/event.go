// Package gesture classifies pen-down/pen-up sequences into touches and
// swipes and dispatches them to registered handlers.
package gesture

import (
	"fmt"

	"github.com/itohio/gotouch/pkg/calib"
)

// Kind identifies a gesture.
type Kind int

const (
	None Kind = iota
	ShortTouch
	LongTouch
	SwipeRight
	SwipeUp
	SwipeLeft
	SwipeDown
)

var kindNames = [...]string{
	None:       "none",
	ShortTouch: "short_touch",
	LongTouch:  "long_touch",
	SwipeRight: "swipe_right",
	SwipeUp:    "swipe_up",
	SwipeLeft:  "swipe_left",
	SwipeDown:  "swipe_down",
}

// Kinds lists every gesture that can be emitted.
func Kinds() []Kind {
	return []Kind{ShortTouch, LongTouch, SwipeRight, SwipeUp, SwipeLeft, SwipeDown}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Event is a classified gesture with its release position.
type Event struct {
	Kind Kind `json:"kind"`
	calib.Point
}

func (e Event) String() string {
	return fmt.Sprintf("%s at %d,%d", e.Kind, e.X, e.Y)
}
