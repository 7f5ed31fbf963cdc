package streamdeck

import "encoding/binary"

// Input report opcodes and sub-opcodes for kinds with sectioned reports.
const (
	opButtons  = 0x00
	opTouch    = 0x02
	opEncoders = 0x03

	touchTap       = 0x01
	touchLongPress = 0x02
	touchSwipe     = 0x03

	encoderPress = 0x00
	encoderTwist = 0x01
)

// inputState is the prior-state snapshot used to suppress duplicate button
// and encoder-press reports. It is owned by the Session; the decoder is
// stateless and updates the snapshot it is handed.
type inputState struct {
	buttons  []bool
	encoders []bool
}

func newInputState(d Descriptor) *inputState {
	return &inputState{
		buttons:  make([]bool, d.KeyCount()),
		encoders: make([]bool, int(d.Encoders)),
	}
}

// decodeInput parses one raw input report into zero or more events. A report
// can carry several simultaneous state changes; only changed keys/encoders
// produce events. Reports shorter than the kind's minimum fail with
// ErrMalformedReport and must be discarded by the caller, not treated as
// fatal: they occur during hot-unplug races.
func decodeInput(d Descriptor, report []byte, st *inputState) ([]InputEvent, error) {
	if len(report) == 0 || report[0] == 0 {
		return nil, nil
	}
	if len(report) < d.MinInputLen {
		return nil, ErrMalformedReport
	}

	if !d.HasOpcodes {
		return decodeButtons(d, report, st), nil
	}

	switch report[1] {
	case opButtons:
		return decodeButtons(d, report, st), nil
	case opTouch:
		return decodeTouch(report)
	case opEncoders:
		return decodeEncoders(d, report, st)
	default:
		return nil, ErrMalformedReport
	}
}

func decodeButtons(d Descriptor, report []byte, st *inputState) []InputEvent {
	var events []InputEvent
	for i := 0; i < d.KeyCount(); i++ {
		idx := uint8(i)
		if d.FlipKeyIndex {
			idx = flipKeyIndex(d, idx)
		}
		pressed := report[d.KeyStateOffset+i] != 0
		if st.buttons[idx] == pressed {
			continue
		}
		st.buttons[idx] = pressed
		if d.PedalKeys {
			events = append(events, PedalChanged{Index: idx, Pressed: pressed})
		} else {
			events = append(events, ButtonChanged{Index: idx, Pressed: pressed})
		}
	}
	return events
}

func decodeTouch(report []byte) ([]InputEvent, error) {
	x := binary.LittleEndian.Uint16(report[6:8])
	y := binary.LittleEndian.Uint16(report[8:10])
	switch report[4] {
	case touchTap:
		return []InputEvent{TouchTap{X: x, Y: y}}, nil
	case touchLongPress:
		return []InputEvent{TouchLongPress{X: x, Y: y}}, nil
	case touchSwipe:
		return []InputEvent{TouchSwipe{
			StartX: x,
			StartY: y,
			EndX:   binary.LittleEndian.Uint16(report[10:12]),
			EndY:   binary.LittleEndian.Uint16(report[12:14]),
		}}, nil
	default:
		return nil, ErrMalformedReport
	}
}

func decodeEncoders(d Descriptor, report []byte, st *inputState) ([]InputEvent, error) {
	if len(report) < 5+int(d.Encoders) {
		return nil, ErrMalformedReport
	}
	var events []InputEvent
	switch report[4] {
	case encoderPress:
		for i := 0; i < int(d.Encoders); i++ {
			pressed := report[5+i] != 0
			if st.encoders[i] == pressed {
				continue
			}
			st.encoders[i] = pressed
			events = append(events, EncoderChanged{Index: uint8(i), Pressed: pressed})
		}
	case encoderTwist:
		for i := 0; i < int(d.Encoders); i++ {
			if delta := int8(report[5+i]); delta != 0 {
				events = append(events, EncoderRotated{Index: uint8(i), Delta: delta})
			}
		}
	default:
		return nil, ErrMalformedReport
	}
	return events, nil
}
