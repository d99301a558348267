package gesture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/touch"
	"github.com/itohio/gotouch/pkg/xpt2046"
)

// step is one poll: a contact at screen position (X, Y), or a release when
// up is set, at offset at from the start of the script.
type step struct {
	at time.Duration
	up bool
	p  calib.Point
}

type scriptPoller struct {
	steps []step
	i     int
}

func (s *scriptPoller) Poll() (touch.RawSample, bool, error) {
	st := s.steps[s.i]
	s.i++
	if st.up {
		return touch.RawSample{}, false, nil
	}
	// The test mapper divides raw values by ten.
	return touch.RawSample{X: st.p.X * 10, Y: st.p.Y * 10, Z: 500}, true, nil
}

func testMapper(t *testing.T) *calib.Mapper {
	t.Helper()
	m := calib.NewMapper(320, 240, calib.Rotation0)
	require.NoError(t, m.SetProfile(calib.Profile{
		Min: calib.ReferencePoint{X: 0, Y: 0, RawX: 0, RawY: 0},
		Max: calib.ReferencePoint{X: 320, Y: 240, RawX: 3200, RawY: 2400},
	}))
	return m
}

// play runs steps through a fresh engine and returns the emitted events.
func play(t *testing.T, steps []step) ([]Event, *Engine) {
	t.Helper()
	poller := &scriptPoller{steps: steps}
	e := NewEngine(poller, testMapper(t), nil, DefaultThresholds())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var now time.Time
	e.SetNowFunc(func() time.Time { return now })

	var events []Event
	for _, st := range steps {
		now = base.Add(st.at)
		ev, err := e.Tick()
		require.NoError(t, err)
		if ev.Kind != None {
			events = append(events, ev)
		}
	}
	return events, e
}

func contact(ms int, x, y int) step {
	return step{at: time.Duration(ms) * time.Millisecond, p: calib.Point{X: x, Y: y}}
}

func release(ms int) step {
	return step{at: time.Duration(ms) * time.Millisecond, up: true}
}

func TestEngine_Gestures(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
		want  []Event
	}{
		{
			name:  "swipe right",
			steps: []step{contact(0, 100, 100), contact(100, 150, 102), contact(300, 200, 100), release(310)},
			want:  []Event{{Kind: SwipeRight, Point: calib.Point{X: 200, Y: 100}}},
		},
		{
			name:  "swipe up",
			steps: []step{contact(0, 100, 200), contact(150, 100, 150), contact(300, 100, 100), release(310)},
			want:  []Event{{Kind: SwipeUp, Point: calib.Point{X: 100, Y: 100}}},
		},
		{
			name:  "swipe left",
			steps: []step{contact(0, 200, 100), contact(300, 100, 110), release(310)},
			want:  []Event{{Kind: SwipeLeft, Point: calib.Point{X: 100, Y: 110}}},
		},
		{
			name:  "swipe down",
			steps: []step{contact(0, 100, 50), contact(300, 110, 150), release(310)},
			want:  []Event{{Kind: SwipeDown, Point: calib.Point{X: 110, Y: 150}}},
		},
		{
			name:  "long touch",
			steps: []step{contact(0, 100, 100), contact(150, 103, 101), contact(300, 105, 105), release(310)},
			want:  []Event{{Kind: LongTouch, Point: calib.Point{X: 105, Y: 105}}},
		},
		{
			name:  "short touch",
			steps: []step{contact(0, 100, 100), contact(100, 105, 105), release(110)},
			want:  []Event{{Kind: ShortTouch, Point: calib.Point{X: 105, Y: 105}}},
		},
		{
			name:  "bounce",
			steps: []step{contact(0, 100, 100), contact(20, 105, 105), release(30)},
		},
		{
			name:  "single sample blip",
			steps: []step{release(0), contact(10, 100, 100), release(400)},
		},
		{
			name:  "exact diagonal",
			steps: []step{contact(0, 100, 100), contact(300, 150, 150), release(310)},
		},
		{
			name: "two gestures",
			steps: []step{
				contact(0, 100, 100), contact(100, 100, 100), release(110),
				release(120),
				contact(200, 100, 100), contact(600, 100, 100), release(610),
			},
			want: []Event{
				{Kind: ShortTouch, Point: calib.Point{X: 100, Y: 100}},
				{Kind: LongTouch, Point: calib.Point{X: 100, Y: 100}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, e := play(t, tt.steps)
			assert.Equal(t, tt.want, events)
			assert.False(t, e.PenDown())
		})
	}
}

func TestEngine_Dispatches(t *testing.T) {
	steps := []step{contact(0, 100, 100), contact(300, 200, 100), release(310)}
	poller := &scriptPoller{steps: steps}
	e := NewEngine(poller, testMapper(t), nil, DefaultThresholds())

	base := time.Now()
	var now time.Time
	e.SetNowFunc(func() time.Time { return now })

	var gotX, gotY int
	e.Registry().OnSwipeRight(func(x, y int) { gotX, gotY = x, y })

	var contacts []calib.Point
	e.OnContact(func(p calib.Point) { contacts = append(contacts, p) })

	for _, st := range steps {
		now = base.Add(st.at)
		_, err := e.Tick()
		require.NoError(t, err)
	}

	assert.Equal(t, 200, gotX)
	assert.Equal(t, 100, gotY)
	assert.Equal(t, []calib.Point{{X: 100, Y: 100}, {X: 200, Y: 100}}, contacts)
}

func TestEngine_Reset(t *testing.T) {
	steps := []step{contact(0, 100, 100), contact(300, 200, 100), release(310)}
	poller := &scriptPoller{steps: steps}
	e := NewEngine(poller, testMapper(t), nil, DefaultThresholds())

	_, err := e.Tick()
	require.NoError(t, err)
	_, err = e.Tick()
	require.NoError(t, err)
	assert.True(t, e.PenDown())

	e.Reset()
	assert.False(t, e.PenDown())

	ev, err := e.Tick()
	require.NoError(t, err)
	assert.Equal(t, None, ev.Kind)
}

type failingPoller struct{ err error }

func (p failingPoller) Poll() (touch.RawSample, bool, error) {
	return touch.RawSample{}, false, p.err
}

func TestEngine_TransportErrorStopsRun(t *testing.T) {
	busErr := errors.New("bus fault")
	e := NewEngine(failingPoller{busErr}, testMapper(t), nil, DefaultThresholds())

	_, err := e.Tick()
	assert.ErrorIs(t, err, busErr)

	err = e.Run(context.Background())
	assert.ErrorIs(t, err, busErr)
}

func TestEngine_RunWithMockPanel(t *testing.T) {
	panel := xpt2046.NewMock(nil)
	sampler := touch.NewSampler(panel, touch.DefaultPressureThreshold)
	e := NewEngine(sampler, testMapper(t), nil, DefaultThresholds())
	e.SetPollInterval(time.Millisecond)

	events := make(chan Event, 1)
	e.Registry().OnEvent(func(ev Event) { events <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	panel.Press(1000, 1000, 600)
	time.Sleep(100 * time.Millisecond)
	panel.Release()

	select {
	case ev := <-events:
		assert.Equal(t, ShortTouch, ev.Kind)
		assert.Equal(t, calib.Point{X: 100, Y: 100}, ev.Point)
	case <-time.After(2 * time.Second):
		t.Fatal("no gesture emitted")
	}

	cancel()
	assert.NoError(t, <-done)
}
