package streamdeck

// InputEvent is one decoded device input. Concrete types: ButtonChanged,
// PedalChanged, EncoderChanged, EncoderRotated, TouchTap, TouchLongPress,
// TouchSwipe and Disconnected.
type InputEvent interface {
	inputEvent()
}

// ButtonChanged reports a grid key press or release.
type ButtonChanged struct {
	Index   uint8
	Pressed bool
}

// PedalChanged reports a pedal press or release on pedal-only kinds.
type PedalChanged struct {
	Index   uint8
	Pressed bool
}

// EncoderChanged reports an encoder knob press or release.
type EncoderChanged struct {
	Index   uint8
	Pressed bool
}

// EncoderRotated reports a relative encoder twist. Delta is negative for
// counter-clockwise rotation.
type EncoderRotated struct {
	Index uint8
	Delta int8
}

// TouchTap reports a short touch on the strip.
type TouchTap struct {
	X, Y uint16
}

// TouchLongPress reports a held touch on the strip.
type TouchLongPress struct {
	X, Y uint16
}

// TouchSwipe reports a swipe gesture across the strip.
type TouchSwipe struct {
	StartX, StartY uint16
	EndX, EndY     uint16
}

// Disconnected is delivered exactly once, as the last event before the event
// channel closes, when the transport becomes unusable or the session is
// closed while reading.
type Disconnected struct {
	Err error
}

func (ButtonChanged) inputEvent()  {}
func (PedalChanged) inputEvent()   {}
func (EncoderChanged) inputEvent() {}
func (EncoderRotated) inputEvent() {}
func (TouchTap) inputEvent()       {}
func (TouchLongPress) inputEvent() {}
func (TouchSwipe) inputEvent()     {}
func (Disconnected) inputEvent()   {}
