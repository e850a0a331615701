package main

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-bulb/common"
	"github.com/Carmen-Shannon/oxy-bulb/engine/input"
)

// helpText is logged when the help overlay opens.
const helpText = "W/S move, A/D strafe, E/Q rise and sink, arrows turn, Z/X or +/- zoom, shift boosts, drag to look, P or F12 screenshot, H help, Esc quit"

// controls routes window events into the input sampler and the application actions.
// While help is open the camera receives no input.
type controls struct {
	mu      sync.Mutex
	sampler input.Sampler
	help    bool
	onHelp  func(open bool)
	onShot  func()
	onQuit  func()
}

func newControls(sampler input.Sampler, onHelp func(bool), onShot, onQuit func()) *controls {
	return &controls{
		sampler: sampler,
		onHelp:  onHelp,
		onShot:  onShot,
		onQuit:  onQuit,
	}
}

// keyDown handles a press. Hotkeys act once per press, auto-repeats only reach the held
// control keys.
func (c *controls) keyDown(code int, repeat bool) {
	if repeat && !common.IsControlKey(code) {
		return
	}
	switch code {
	case common.KeyEscape:
		if c.setHelp(false) {
			return
		}
		if c.onQuit != nil {
			c.onQuit()
		}
	case common.KeyHelp:
		c.mu.Lock()
		open := !c.help
		c.mu.Unlock()
		c.setHelp(open)
	case common.KeyScreenshot, common.KeyF12:
		if c.onShot != nil {
			c.onShot()
		}
	default:
		if common.IsControlKey(code) && !c.helpOpen() {
			c.sampler.RecordPhysicalKey(code, true)
		}
	}
}

// keyUp always records releases so a key held while help opened is not stuck.
func (c *controls) keyUp(code int) {
	if common.IsControlKey(code) {
		c.sampler.RecordPhysicalKey(code, false)
	}
}

func (c *controls) look(dYaw, dPitch float32) {
	if c.helpOpen() {
		return
	}
	c.sampler.RecordPointerLookDelta(dYaw, dPitch)
}

func (c *controls) clear() {
	c.sampler.ClearAll()
}

func (c *controls) helpOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.help
}

// setHelp changes the overlay state and reports whether it changed.
func (c *controls) setHelp(open bool) bool {
	c.mu.Lock()
	changed := c.help != open
	c.help = open
	c.mu.Unlock()
	if !changed {
		return false
	}
	c.sampler.ClearAll()
	if c.onHelp != nil {
		c.onHelp(open)
	}
	return true
}
