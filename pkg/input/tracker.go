// Package input tracks SDL2 key state so the demo harness can react to
// presses (not holds) when driving PlayerState from the keyboard.
// Adapted from the teacher's pkg/input key/mouse press trackers.
package input

import "github.com/veandco/go-sdl2/sdl"

// KeyPressTracker manages key press state to prevent a single physical
// keypress from being observed as "pressed" on every poll while the key
// is held down.
type KeyPressTracker struct {
	pressed map[sdl.Scancode]bool
}

// NewKeyPressTracker creates a new KeyPressTracker.
func NewKeyPressTracker() KeyPressTracker {
	return KeyPressTracker{pressed: make(map[sdl.Scancode]bool)}
}

// IsPressed reports whether scancode transitioned from released to
// pressed since the last call.
func (kpt *KeyPressTracker) IsPressed(keyState []uint8, scancode sdl.Scancode) bool {
	isCurrentlyPressed := keyState[scancode] != 0
	wasPressed := kpt.pressed[scancode]
	kpt.pressed[scancode] = isCurrentlyPressed
	return isCurrentlyPressed && !wasPressed
}
