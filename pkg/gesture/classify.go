package gesture

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/config"
)

// Default classification thresholds.
const (
	DefaultLongTouch  = 280 * time.Millisecond
	DefaultShortTouch = 35 * time.Millisecond
	DefaultMinSwipe   = 20
)

// Thresholds control gesture classification.
type Thresholds struct {
	LongTouch  time.Duration // Longer contacts are long touches or swipes
	ShortTouch time.Duration // Shorter contacts are ignored as bounce
	MinSwipe   int           // Minimum travel on either axis for a swipe
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LongTouch:  DefaultLongTouch,
		ShortTouch: DefaultShortTouch,
		MinSwipe:   DefaultMinSwipe,
	}
}

// ThresholdsFromConfig converts the gesture section of the configuration.
func ThresholdsFromConfig(cfg config.GestureConfig) Thresholds {
	return Thresholds{
		LongTouch:  cfg.LongTouch,
		ShortTouch: cfg.ShortTouch,
		MinSwipe:   cfg.MinSwipe,
	}
}

// Classify returns the gesture of a contact that went down at down, was
// last seen at last, and lasted d. It returns None when nothing should be
// emitted.
func Classify(t Thresholds, down, last calib.Point, d time.Duration) Kind {
	switch {
	case d > t.LongTouch:
		dir, ok := direction(last.X-down.X, last.Y-down.Y, t.MinSwipe)
		if !ok {
			return None
		}
		if dir == None {
			return LongTouch
		}
		return dir
	case d > t.ShortTouch:
		return ShortTouch
	}
	return None
}

// direction classifies a displacement. It returns None with ok set when
// the travel is below minSwipe on both axes, and ok false when the slope
// falls on an exact diagonal.
func direction(dx, dy, minSwipe int) (Kind, bool) {
	if abs(dx) < minSwipe && abs(dy) < minSwipe {
		return None, true
	}

	// dy == 0 gives +Inf, dx == 0 gives 0.
	ratio := math32.Abs(float32(dx) / float32(dy))

	switch {
	case dx > 0 && ratio > 1:
		return SwipeRight, true
	case dy < 0 && ratio < 1:
		return SwipeUp, true
	case dx < 0 && ratio > 1:
		return SwipeLeft, true
	case dy > 0 && ratio < 1:
		return SwipeDown, true
	}
	return None, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
