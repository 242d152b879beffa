package roomba

import (
	"strings"
	"sync"
	"time"
)

// Connection is the raw duplex byte channel the engine drives. Read must
// return exactly n bytes or fail: the OI wire format is purely
// positional, a short read cannot be told apart from corruption.
// Implementations decide how (and whether) to time out.
type Connection interface {
	Write(b []byte) error
	Read(n int) ([]byte, error)
	Close() error
}

// BRCPin is implemented by connections that control the robot's BRC
// (baud rate change / wake) pin.
type BRCPin interface {
	SetBRC(on bool) error
}

// BaudSetter is implemented by connections whose line speed can be
// changed to follow a baud command.
type BaudSetter interface {
	SetBaudRate(rate int) error
}

// InputDrainer is implemented by connections that can discard whatever
// the robot has sent but nobody read, e.g. the boot banner after Reset.
type InputDrainer interface {
	DrainInput() error
}

// Special radius values for Drive.
const (
	RadiusStraight    = -32768
	RadiusStraightAlt = 0x7FFF
	RadiusSpinCW      = -1
	RadiusSpinCCW     = 1
)

//go:generate stringer -type=ChargingState

// ChargingState is the value of the charging-state sensor (packet 21).
type ChargingState int

const (
	NotCharging            ChargingState = 0
	ReconditioningCharging ChargingState = 1
	FullCharging           ChargingState = 2
	TrickleCharging        ChargingState = 3
	ChargeWaiting          ChargingState = 4
	ChargingFault          ChargingState = 5
)

// Day of the week for SetDayTime and Schedule, sunday first as the
// hardware counts.
type Day int

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Note is one entry of a song: a MIDI pitch (31-127 audible, anything
// else is a rest) and a duration in 64ths of a second.
type Note struct {
	Pitch    int
	Duration int
}

// ClockTime is a wall-clock time of day for the cleaning schedule.
type ClockTime struct {
	Hour   int
	Minute int
}

var baudCodes = map[int]int{
	300: 0, 600: 1, 1200: 2, 2400: 3, 4800: 4, 9600: 5,
	14400: 6, 19200: 7, 28800: 8, 38400: 9, 57600: 10, 115200: 11,
}

// Roomba drives one robot over one byte channel. It owns the channel for
// the lifetime of the session and serializes its own public calls with
// an internal lock; the OI is strictly half-duplex per command, there is
// no pipelining to be had.
//
// Mode() is the driver's belief about the OI mode, not ground truth: the
// hardware demotes Safe to Passive on its own when a cliff, wheel drop
// or charger trips, and only a read of packet 35 (VerifyMode) reveals
// that.
type Roomba struct {
	sync.Mutex
	Conn Connection

	mode *ModeTracker

	// set by PauseStream, checked by a running Stream between frames
	streamPaused int32
}

// New returns an engine for the given connection, believed Off until
// Start is called.
func New(conn Connection) *Roomba {
	return &Roomba{Conn: conn, mode: NewModeTracker()}
}

// Mode returns the believed OI mode.
func (r *Roomba) Mode() Mode {
	r.Lock()
	defer r.Unlock()
	return r.mode.Current()
}

// SetConn swaps the byte channel, typically after the watcher
// re-discovered the serial port.
func (r *Roomba) SetConn(conn Connection) {
	r.Lock()
	r.Conn = conn
	r.Unlock()
}

// Connection returns the current byte channel. Readers outside the
// engine must go through here: Reconnect and SetConn write Conn under
// the lock.
func (r *Roomba) Connection() Connection {
	r.Lock()
	defer r.Unlock()
	return r.Conn
}

// exec validates mode legality, encodes and writes one command. Callers
// hold the lock. No bytes are written if validation or encoding fails.
func (r *Roomba) exec(name string, args ...int) error {
	spec, ok := commands[name]
	if !ok {
		return &UnknownCommandError{Name: name}
	}
	if err := r.mode.Check(spec); err != nil {
		return err
	}
	b, err := encodeSpec(spec, args)
	if err != nil {
		return err
	}
	if err := r.Conn.Write(b); err != nil {
		return &ChannelError{Op: "write", Err: err}
	}
	return nil
}

// query sends a sensor request and decodes the exact expected payload.
// Callers hold the lock.
func (r *Roomba) query(ids ...SensorID) (Snapshot, error) {
	size, err := PayloadSize(ids)
	if err != nil {
		return nil, err
	}
	if len(ids) == 1 {
		err = r.exec("sensors", int(ids[0]))
	} else {
		args := make([]int, 0, len(ids)+1)
		args = append(args, len(ids))
		for _, id := range ids {
			args = append(args, int(id))
		}
		err = r.exec("query_list", args...)
	}
	if err != nil {
		return nil, err
	}
	buf, err := r.Conn.Read(size)
	if err != nil {
		return nil, &ChannelError{Op: "read", Err: err}
	}
	return Decode(ids, buf)
}

// Start opens the OI session. It must precede any other command and
// leaves the robot in Passive mode.
func (r *Roomba) Start() error {
	r.Lock()
	defer r.Unlock()
	if r.mode.Current() != ModeOff {
		return ErrAlreadyStarted
	}
	if err := r.exec("start"); err != nil {
		return err
	}
	return r.mode.Start()
}

// Stop closes the OI session. The robot stops responding to anything but
// Start afterwards, and so does this engine.
func (r *Roomba) Stop() error {
	r.Lock()
	defer r.Unlock()
	if err := r.exec("stop"); err != nil {
		return err
	}
	return r.mode.Stop()
}

// Reset reboots the robot as if the battery was pulled, leaving the OI
// off. The boot banner is discarded when the channel can drain it.
func (r *Roomba) Reset() error {
	r.Lock()
	defer r.Unlock()
	if err := r.exec("reset"); err != nil {
		return err
	}
	r.mode.Observe(ModeOff)
	if d, ok := r.Conn.(InputDrainer); ok {
		if err := d.DrainInput(); err != nil {
			return &ChannelError{Op: "drain", Err: err}
		}
	}
	return nil
}

// Safe puts the OI into Safe mode: user control with the cliff,
// wheel-drop and charger safety features armed.
func (r *Roomba) Safe() error { return r.toMode("safe", ModeSafe) }

// Full puts the OI into Full mode, disabling the safety features. The
// robot will run off a cliff if told to.
func (r *Roomba) Full() error { return r.toMode("full", ModeFull) }

// Passive drops back to Passive mode by re-sending the start opcode,
// which the hardware accepts in any started mode.
func (r *Roomba) Passive() error { return r.toMode("start", ModePassive) }

func (r *Roomba) toMode(name string, m Mode) error {
	r.Lock()
	defer r.Unlock()
	if err := r.exec(name); err != nil {
		return err
	}
	return r.mode.To(m)
}

// Power powers the robot down. The OI drops to Passive.
func (r *Roomba) Power() error { return r.toMode("power", ModePassive) }

// Clean starts a default cleaning cycle. The OI drops to Passive.
func (r *Roomba) Clean() error { return r.toMode("clean", ModePassive) }

// Max starts a clean-until-dead cycle. The OI drops to Passive.
func (r *Roomba) Max() error { return r.toMode("max", ModePassive) }

// Spot starts a spot clean. The OI drops to Passive.
func (r *Roomba) Spot() error { return r.toMode("spot", ModePassive) }

// SeekDock sends the robot home. The OI drops to Passive.
func (r *Roomba) SeekDock() error { return r.toMode("seek_dock", ModePassive) }

// Baud changes the OI line speed. The hardware needs 100ms of silence
// after the command; the connection is reconfigured afterwards when it
// supports that.
func (r *Roomba) Baud(rate int) error {
	code, ok := baudCodes[rate]
	if !ok {
		return ErrBaudRate
	}
	r.Lock()
	defer r.Unlock()
	if err := r.exec("baud", code); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	if bs, ok := r.Conn.(BaudSetter); ok {
		if err := bs.SetBaudRate(rate); err != nil {
			return &ChannelError{Op: "set baud rate", Err: err}
		}
	}
	return nil
}

// Wake pulses the BRC pin to wake a sleeping robot. Needed after Power
// and at least once per 5 minutes in Passive mode to keep it listening.
func (r *Roomba) Wake() error {
	r.Lock()
	defer r.Unlock()
	pin, ok := r.Conn.(BRCPin)
	if !ok {
		return ErrNoBRC
	}
	if err := pin.SetBRC(false); err != nil {
		return &ChannelError{Op: "brc low", Err: err}
	}
	time.Sleep(15 * time.Millisecond)
	if err := pin.SetBRC(true); err != nil {
		return &ChannelError{Op: "brc high", Err: err}
	}
	time.Sleep(15 * time.Millisecond)
	return nil
}

// Drive sets the average wheel velocity in mm/s (-500..500) and turn
// radius in mm (-2000..2000, negative turns right). The special radius
// values RadiusStraight and RadiusSpinCW/CCW drive straight or spin in
// place.
func (r *Roomba) Drive(velocity, radius int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("drive", velocity, radius)
}

// DriveStraight drives straight at the given velocity.
func (r *Roomba) DriveStraight(velocity int) error {
	return r.Drive(velocity, RadiusStraight)
}

// Rotate spins in place counter-clockwise; a negative velocity spins
// clockwise.
func (r *Roomba) Rotate(velocity int) error {
	return r.Drive(velocity, RadiusSpinCCW)
}

// DriveDirect sets the right and left wheel velocities independently, in
// mm/s (-500..500 each).
func (r *Roomba) DriveDirect(right, left int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("drive_direct", right, left)
}

// DrivePWM sets the raw wheel PWM duty cycles (-255..255 each).
func (r *Roomba) DrivePWM(right, left int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("drive_pwm", right, left)
}

// DriveStop stops both wheels.
func (r *Roomba) DriveStop() error {
	return r.DriveDirect(0, 0)
}

// Motors switches the cleaning motors on or off at full speed. The
// brushes can run in either direction, the vacuum only forward.
func (r *Roomba) Motors(sideBrush, vacuum, mainBrush, sideBrushCW, mainBrushOutward bool) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("motors", bitflags(sideBrush, vacuum, mainBrush, sideBrushCW, mainBrushOutward))
}

// MotorsPWM sets the cleaning motor duty cycles: main and side brush
// -127..127, vacuum 0..127.
func (r *Roomba) MotorsPWM(mainBrush, sideBrush, vacuum int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("motors_pwm", mainBrush, sideBrush, vacuum)
}

// LEDs drives the indicator LEDs. The power LED takes a color (0 green,
// 255 red) and an intensity (0 off, 255 full).
func (r *Roomba) LEDs(debris, spot, dock, checkRobot bool, powerColor, powerIntensity int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("leds", bitflags(debris, spot, dock, checkRobot), powerColor, powerIntensity)
}

// SchedulingLEDs drives the scheduling display LEDs of models that have
// one: a weekday bitmask (sunday = bit 0) and the colon/pm/am/clock/
// schedule indicator bitmask.
func (r *Roomba) SchedulingLEDs(weekdays, indicators int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("scheduling_leds", weekdays, indicators)
}

// DigitLEDsRaw drives the four 7-segment digits by raw segment masks,
// leftmost digit first.
func (r *Roomba) DigitLEDsRaw(d3, d2, d1, d0 int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("digit_leds_raw", d3, d2, d1, d0)
}

// DigitLEDsASCII shows up to four printable ASCII characters on the
// 7-segment display, padded with spaces.
func (r *Roomba) DigitLEDsASCII(text string) error {
	if len(text) > 4 {
		return ErrAsciiLen
	}
	text = strings.ToUpper(text)
	for len(text) < 4 {
		text += " "
	}
	r.Lock()
	defer r.Unlock()
	return r.exec("digit_leds_ascii", int(text[0]), int(text[1]), int(text[2]), int(text[3]))
}

// PressButtons pushes the robot's buttons remotely; they release on
// their own after a sixth of a second.
func (r *Roomba) PressButtons(clean, spot, dock, minute, hour, day, schedule, clock bool) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("buttons", bitflags(clean, spot, dock, minute, hour, day, schedule, clock))
}

// Song stores a song (1 to 16 notes) under the given slot (0-3) for
// later playback with Play.
func (r *Roomba) Song(num int, notes []Note) error {
	if len(notes) < 1 || len(notes) > 16 {
		return ErrSongNotes
	}
	args := make([]int, 0, 2+2*len(notes))
	args = append(args, num, len(notes))
	for _, n := range notes {
		args = append(args, n.Pitch, n.Duration)
	}
	r.Lock()
	defer r.Unlock()
	return r.exec("song", args...)
}

// Play plays a previously stored song.
func (r *Roomba) Play(num int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("play", num)
}

// Schedule programs the cleaning schedule, one optional time per day
// starting sunday. All-nil disables scheduled cleaning.
func (r *Roomba) Schedule(week [7]*ClockTime) error {
	days := 0
	args := make([]int, 0, 15)
	args = append(args, 0)
	for i, ct := range week {
		if ct == nil {
			args = append(args, 0, 0)
			continue
		}
		days |= 1 << uint(i)
		args = append(args, ct.Hour, ct.Minute)
	}
	args[0] = days
	r.Lock()
	defer r.Unlock()
	return r.exec("schedule", args...)
}

// SetDayTime sets the robot's clock.
func (r *Roomba) SetDayTime(day Day, hour, minute int) error {
	r.Lock()
	defer r.Unlock()
	return r.exec("set_day_time", int(day), hour, minute)
}

// Sensors requests one packet id (single sensor or group) and returns
// the decoded snapshot in wire order. Every sensor read is an explicit
// operation with its own failure mode; nothing is queried behind a
// field access.
func (r *Roomba) Sensors(id SensorID) (Snapshot, error) {
	r.Lock()
	defer r.Unlock()
	return r.query(id)
}

// QueryList requests an ad-hoc ordered list of packet ids in a single
// round trip. The answer preserves the requested order.
func (r *Roomba) QueryList(ids ...SensorID) (Snapshot, error) {
	r.Lock()
	defer r.Unlock()
	return r.query(ids...)
}

// VerifyMode reads packet 35 and reconciles the believed mode with what
// the hardware reports. This is the only way to notice an autonomous
// Safe to Passive demotion.
func (r *Roomba) VerifyMode() (Mode, error) {
	r.Lock()
	defer r.Unlock()
	snap, err := r.query(PacketOIMode)
	if err != nil {
		return ModeOff, err
	}
	m := Mode(snap[0].Int)
	r.mode.Observe(m)
	return m, nil
}

// Reconnect swaps the byte channel and re-establishes the believed mode
// on the other side, assuming the robot rebooted to Off in between.
func (r *Roomba) Reconnect(conn Connection) error {
	r.Lock()
	defer r.Unlock()
	r.Conn = conn
	switch r.mode.Current() {
	case ModeOff:
		return nil
	case ModeSafe:
		if err := r.exec("start"); err != nil {
			return err
		}
		return r.exec("safe")
	case ModeFull:
		if err := r.exec("start"); err != nil {
			return err
		}
		return r.exec("full")
	default:
		return r.exec("start")
	}
}

func (r *Roomba) sensorInt(id SensorID) (int, error) {
	snap, err := r.Sensors(id)
	if err != nil {
		return 0, err
	}
	return snap[0].Int, nil
}

func (r *Roomba) sensorFlags(id SensorID) (FlagSet, error) {
	snap, err := r.Sensors(id)
	if err != nil {
		return FlagSet{}, err
	}
	return snap[0].Flags, nil
}

// Voltage returns the battery voltage in mV.
func (r *Roomba) Voltage() (int, error) { return r.sensorInt(PacketVoltage) }

// Current returns the battery current in mA, negative while discharging.
func (r *Roomba) Current() (int, error) { return r.sensorInt(PacketCurrent) }

// Temperature returns the battery temperature in degrees Celsius.
func (r *Roomba) Temperature() (int, error) { return r.sensorInt(PacketTemperature) }

// BatteryCharge returns the battery charge in mAh.
func (r *Roomba) BatteryCharge() (int, error) { return r.sensorInt(PacketBatteryCharge) }

// BatteryCapacity returns the estimated battery capacity in mAh.
func (r *Roomba) BatteryCapacity() (int, error) { return r.sensorInt(PacketBatteryCapacity) }

// Distance returns the distance travelled in mm since the last read. The
// counter resets on every read, including reads through groups.
func (r *Roomba) Distance() (int, error) { return r.sensorInt(PacketDistance) }

// Angle returns the angle turned in degrees since the last read,
// counter-clockwise positive. Resets on every read.
func (r *Roomba) Angle() (int, error) { return r.sensorInt(PacketAngle) }

// Charging returns the current charging state.
func (r *Roomba) Charging() (ChargingState, error) {
	v, err := r.sensorInt(PacketChargingState)
	return ChargingState(v), err
}

// Bumps returns the bump and wheel-drop flags.
func (r *Roomba) Bumps() (FlagSet, error) { return r.sensorFlags(PacketBumpsWheelDrops) }

// Buttons returns the currently pressed button flags.
func (r *Roomba) Buttons() (FlagSet, error) { return r.sensorFlags(PacketButtons) }

// LightBumper returns the light bumper trigger flags.
func (r *Roomba) LightBumper() (FlagSet, error) { return r.sensorFlags(PacketLightBumper) }

// Cliffs returns the four cliff sensors left to right.
func (r *Roomba) Cliffs() ([4]bool, error) {
	var out [4]bool
	snap, err := r.QueryList(PacketCliffLeft, PacketCliffFrontLeft,
		PacketCliffFrontRight, PacketCliffRight)
	if err != nil {
		return out, err
	}
	for i := range out {
		out[i] = snap[i].Bool
	}
	return out, nil
}
