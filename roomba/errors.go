package roomba

import (
	"errors"
	"fmt"
)

// Session bracket errors.
var (
	ErrNotStarted     = errors.New("roomba: OI not started, call Start first")
	ErrStopped        = errors.New("roomba: OI stopped, session is over")
	ErrAlreadyStarted = errors.New("roomba: OI already started")
)

var (
	ErrBaudRate  = errors.New("roomba: unsupported baud rate")
	ErrNoBRC     = errors.New("roomba: connection has no BRC pin control")
	ErrSongNotes = errors.New("roomba: song must have 1 to 16 notes")
	ErrAsciiLen  = errors.New("roomba: digit display takes at most 4 characters")
)

// Stream framing errors. A stream that fails framing is not trustworthy
// anymore; the engine pauses it instead of trying to resynchronize.
var (
	ErrStreamHeader   = errors.New("roomba: bad stream frame header")
	ErrStreamChecksum = errors.New("roomba: stream frame checksum mismatch")
)

// UnknownCommandError is returned when a command name is not in the
// catalog.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("roomba: unknown command %q", e.Name)
}

// UnknownSensorError is returned for a packet id absent from the sensor
// catalog, before or after group expansion.
type UnknownSensorError struct {
	ID SensorID
}

func (e *UnknownSensorError) Error() string {
	return fmt.Sprintf("roomba: unknown sensor packet %d", e.ID)
}

// ArityError is returned when the number of arguments does not match the
// command's parameter list.
type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("roomba: %s takes %d arguments, got %d", e.Name, e.Want, e.Got)
}

// ArgumentRangeError is returned when an argument falls outside its
// parameter's inclusive range.
type ArgumentRangeError struct {
	Name  string
	Index int
	Value int
	Min   int
	Max   int
}

func (e *ArgumentRangeError) Error() string {
	return fmt.Sprintf("roomba: %s argument %d is %d, must be %d to %d",
		e.Name, e.Index, e.Value, e.Min, e.Max)
}

// IllegalModeError is returned when a command is not accepted in the
// believed mode.
type IllegalModeError struct {
	Name  string
	Mode  Mode
	Legal ModeSet
}

func (e *IllegalModeError) Error() string {
	return fmt.Sprintf("roomba: %s is illegal in %s mode (legal: %s)", e.Name, e.Mode, e.Legal)
}

// BufferLengthError is returned when a sensor payload does not match the
// expanded request width exactly. There is no length prefix on the wire,
// so this is unrecoverable framing corruption for the session.
type BufferLengthError struct {
	Want int
	Got  int
}

func (e *BufferLengthError) Error() string {
	return fmt.Sprintf("roomba: sensor payload is %d bytes, expected %d", e.Got, e.Want)
}

// InvalidBooleanError is returned when a boolean sensor reports a raw
// byte outside {0,1}.
type InvalidBooleanError struct {
	ID  SensorID
	Raw byte
}

func (e *InvalidBooleanError) Error() string {
	return fmt.Sprintf("roomba: boolean sensor packet %d reported %#02x", e.ID, e.Raw)
}

// GroupCycleError is returned when group expansion loops. OI groups are
// flat, so this only fires on a corrupted catalog, but the decoder does
// not assume that.
type GroupCycleError struct {
	ID SensorID
}

func (e *GroupCycleError) Error() string {
	return fmt.Sprintf("roomba: sensor group %d expands to itself", e.ID)
}

// ChannelError wraps an I/O failure from the byte channel. The engine
// never retries: commands like drive are not idempotent at the hardware
// level, so a retry without caller awareness is unsafe.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("roomba: channel %s: %s", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
