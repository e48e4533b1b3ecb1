package visca

import "fmt"

// Direction is a pan/tilt drive direction.
type Direction int

const (
	Stop Direction = iota
	Up
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
)

// Pan and tilt direction bytes of the drive command.
const (
	panLeft   byte = 0x01
	panRight  byte = 0x02
	panStop   byte = 0x03
	tiltUp    byte = 0x01
	tiltDown  byte = 0x02
	tiltStop  byte = 0x03
	maxPanSp  byte = 0x18
	maxTiltSp byte = 0x14
)

// Speed limits for pan/tilt drive.
const (
	MinSpeed        byte = 0x01
	MaxPanSpeed          = maxPanSp
	MaxTiltSpeed         = maxTiltSp
	DefaultSpeed    byte = 0x08
	MaxPresetNumber      = 254
	MaxPosition          = 0xFFFF
)

var directionBytes = map[Direction][2]byte{
	Stop:      {panStop, tiltStop},
	Up:        {panStop, tiltUp},
	Down:      {panStop, tiltDown},
	Left:      {panLeft, tiltStop},
	Right:     {panRight, tiltStop},
	UpLeft:    {panLeft, tiltUp},
	UpRight:   {panRight, tiltUp},
	DownLeft:  {panLeft, tiltDown},
	DownRight: {panRight, tiltDown},
}

var directionNames = map[Direction]string{
	Stop:      "Stop Pan/Tilt",
	Up:        "Tilt Up",
	Down:      "Tilt Down",
	Left:      "Pan Left",
	Right:     "Pan Right",
	UpLeft:    "Up-Left",
	UpRight:   "Up-Right",
	DownLeft:  "Down-Left",
	DownRight: "Down-Right",
}

// String returns the label used for drive commands in this direction.
func (d Direction) String() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return "Unknown"
}

func header(addr byte) byte {
	return CommandHeader | (addr & 0x07)
}

func clampSpeed(v, max byte) byte {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > max {
		return max
	}
	return v
}

// nibbles splits v into four bytes of four bits each, most significant first.
func nibbles(v uint16) []byte {
	return []byte{
		byte(v>>12) & 0x0F,
		byte(v>>8) & 0x0F,
		byte(v>>4) & 0x0F,
		byte(v) & 0x0F,
	}
}

// PanTiltDrive moves the camera in d at the given speeds until stopped.
// Speeds are clamped to 0x01..0x18 (pan) and 0x01..0x14 (tilt).
func PanTiltDrive(addr byte, d Direction, panSpeed, tiltSpeed byte) Command {
	dir, ok := directionBytes[d]
	if !ok {
		dir = directionBytes[Stop]
	}
	frame := []byte{
		header(addr), 0x01, 0x06, 0x01,
		clampSpeed(panSpeed, maxPanSp), clampSpeed(tiltSpeed, maxTiltSp),
		dir[0], dir[1], Terminator,
	}
	return MustCommand(d.String(), frame)
}

// PanTiltStop stops pan/tilt motion.
func PanTiltStop(addr byte) Command {
	return PanTiltDrive(addr, Stop, DefaultSpeed, DefaultSpeed)
}

// Home moves the camera to its home position.
func Home(addr byte) Command {
	return MustCommand("Home Position", []byte{header(addr), 0x01, 0x06, 0x04, Terminator})
}

// Reset re-initialises the pan/tilt mechanism.
func Reset(addr byte) Command {
	return MustCommand("Reset", []byte{header(addr), 0x01, 0x06, 0x05, Terminator})
}

// PresetSpeed sets the speed used when recalling presets.
func PresetSpeed(addr, speed byte) Command {
	return MustCommand("Preset Speed",
		[]byte{header(addr), 0x01, 0x06, 0x01, clampSpeed(speed, maxPanSp), Terminator})
}

// PresetSet stores the current position in preset n.
func PresetSet(addr, n byte) Command {
	return MustCommand(fmt.Sprintf("Save Preset %d", n),
		[]byte{header(addr), 0x01, 0x04, 0x3F, 0x01, n, Terminator})
}

// PresetRecall moves to preset n.
func PresetRecall(addr, n byte) Command {
	return MustCommand(fmt.Sprintf("Recall Preset %d", n),
		[]byte{header(addr), 0x01, 0x04, 0x3F, 0x02, n, Terminator})
}

// PanTiltAbsolute moves to an absolute pan/tilt position.
func PanTiltAbsolute(addr, panSpeed, tiltSpeed byte, pan, tilt uint16) Command {
	frame := []byte{header(addr), 0x01, 0x06, 0x02,
		clampSpeed(panSpeed, maxPanSp), clampSpeed(tiltSpeed, maxPanSp)}
	frame = append(frame, nibbles(pan)...)
	frame = append(frame, nibbles(tilt)...)
	frame = append(frame, Terminator)
	return MustCommand(fmt.Sprintf("Pan/Tilt to %04X/%04X", pan, tilt), frame)
}

// ZoomDirect sets an absolute zoom position.
func ZoomDirect(addr byte, pos uint16) Command {
	frame := append([]byte{header(addr), 0x01, 0x04, 0x47}, nibbles(pos)...)
	return MustCommand(fmt.Sprintf("Zoom to %04X", pos), append(frame, Terminator))
}

// FocusDirect sets an absolute focus position.
func FocusDirect(addr byte, pos uint16) Command {
	frame := append([]byte{header(addr), 0x01, 0x04, 0x48}, nibbles(pos)...)
	return MustCommand(fmt.Sprintf("Focus to %04X", pos), append(frame, Terminator))
}

// PanTiltPositionInquiry asks for the current pan/tilt position.
func PanTiltPositionInquiry(addr byte) Command {
	return MustCommand("Pan/Tilt Position Inquiry", []byte{header(addr), 0x09, 0x06, 0x12, Terminator})
}

// ZoomPositionInquiry asks for the current zoom position.
func ZoomPositionInquiry(addr byte) Command {
	return MustCommand("Zoom Position Inquiry", []byte{header(addr), 0x09, 0x04, 0x47, Terminator})
}

// FocusPositionInquiry asks for the current focus position.
func FocusPositionInquiry(addr byte) Command {
	return MustCommand("Focus Position Inquiry", []byte{header(addr), 0x09, 0x04, 0x48, Terminator})
}

// DefaultTable is the built-in cycle: pan left, stop, pan right, stop at
// medium speed.
func DefaultTable(addr byte) []Command {
	return []Command{
		PanTiltDrive(addr, Left, DefaultSpeed, DefaultSpeed),
		PanTiltStop(addr),
		PanTiltDrive(addr, Right, DefaultSpeed, DefaultSpeed),
		PanTiltStop(addr),
	}
}
