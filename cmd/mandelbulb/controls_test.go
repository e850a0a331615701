package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
)

type recorder struct {
	help  []bool
	shots int
	quits int
}

func newTestControls() (*controls, input.Sampler, *recorder) {
	s := input.NewSampler()
	r := &recorder{}
	c := newControls(s,
		func(open bool) { r.help = append(r.help, open) },
		func() { r.shots++ },
		func() { r.quits++ },
	)
	return c, s, r
}

func TestControlsForwardsControlKeys(t *testing.T) {
	c, s, _ := newTestControls()

	c.keyDown(common.KeyW, false)
	sig := s.ConsumeFrameSignal()
	if !sig.Active(common.KeyW) {
		t.Fatal("expected W to be held")
	}

	c.keyUp(common.KeyW)
	if s.ConsumeFrameSignal().Active(common.KeyW) {
		t.Fatal("expected W to be released")
	}
}

func TestControlsHotkeysNeverReachSignal(t *testing.T) {
	c, s, r := newTestControls()

	c.keyDown(common.KeyScreenshot, false)
	c.keyDown(common.KeyF12, false)
	sig := s.ConsumeFrameSignal()
	if sig.Active(common.KeyScreenshot) || sig.Active(common.KeyF12) {
		t.Fatal("hotkeys leaked into the control signal")
	}
	if r.shots != 2 {
		t.Fatalf("expected 2 screenshots, got %d", r.shots)
	}
}

func TestControlsHelpBlocksInput(t *testing.T) {
	c, s, r := newTestControls()

	c.keyDown(common.KeyA, false)
	c.keyDown(common.KeyHelp, false)
	if !c.helpOpen() {
		t.Fatal("expected help to be open")
	}
	if s.ConsumeFrameSignal().Active(common.KeyA) {
		t.Fatal("opening help should clear held keys")
	}

	c.keyDown(common.KeyD, false)
	c.look(0.5, 0.5)
	sig := s.ConsumeFrameSignal()
	if sig.Active(common.KeyD) || !sig.Idle() {
		t.Fatalf("input reached the camera while help was open: %+v", sig)
	}

	c.keyDown(common.KeyHelp, false)
	if c.helpOpen() {
		t.Fatal("expected help to close on second H")
	}
	if len(r.help) != 2 || !r.help[0] || r.help[1] {
		t.Fatalf("unexpected help notifications %v", r.help)
	}
}

func TestControlsEscapeClosesHelpBeforeQuitting(t *testing.T) {
	c, _, r := newTestControls()

	c.keyDown(common.KeyHelp, false)
	c.keyDown(common.KeyEscape, false)
	if c.helpOpen() {
		t.Fatal("escape should close help")
	}
	if r.quits != 0 {
		t.Fatal("escape quit while help was open")
	}

	c.keyDown(common.KeyEscape, false)
	if r.quits != 1 {
		t.Fatalf("expected 1 quit, got %d", r.quits)
	}
}

func TestControlsLookAndClear(t *testing.T) {
	c, s, _ := newTestControls()

	c.look(0.1, -0.2)
	sig := s.ConsumeFrameSignal()
	if sig.LookYaw == 0 || sig.LookPitch == 0 {
		t.Fatalf("expected look deltas, got %+v", sig)
	}

	c.keyDown(common.KeyShift, false)
	c.clear()
	if s.ConsumeFrameSignal().Active(common.KeyShift) {
		t.Fatal("clear should release held keys")
	}
}

func TestControlsIgnoreRepeatedHotkeys(t *testing.T) {
	c, s, r := newTestControls()

	c.keyDown(common.KeyScreenshot, false)
	c.keyDown(common.KeyScreenshot, true)
	c.keyDown(common.KeyF12, true)
	if r.shots != 1 {
		t.Errorf("held screenshot key took %d shots, want 1", r.shots)
	}

	c.keyDown(common.KeyHelp, false)
	c.keyDown(common.KeyHelp, true)
	c.keyDown(common.KeyHelp, true)
	if !c.helpOpen() || len(r.help) != 1 {
		t.Errorf("held H toggled help %d times, open=%v", len(r.help), c.helpOpen())
	}

	c.keyDown(common.KeyEscape, false)
	c.keyDown(common.KeyEscape, true)
	if r.quits != 0 {
		t.Error("repeated escape quit after closing help")
	}

	c.keyDown(common.KeyW, true)
	if !s.ConsumeFrameSignal().Active(common.KeyW) {
		t.Error("repeats of control keys must still register")
	}
}
