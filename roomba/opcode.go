package roomba

// see iRobot Create 2 Open Interface spec, "OI Opcodes"

// Opcode is the single byte identifying a command on the wire.
type Opcode byte

// Getting started commands.
const (
	OpStart Opcode = 0x80
	OpReset Opcode = 0x07
	OpStop  Opcode = 0xAD
	OpBaud  Opcode = 0x81
)

// Mode commands.
const (
	OpSafe Opcode = 0x83
	OpFull Opcode = 0x84
)

// Cleaning commands.
const (
	OpClean    Opcode = 0x87
	OpMax      Opcode = 0x88
	OpSpot     Opcode = 0x86
	OpSeekDock Opcode = 0x8F
	OpPower    Opcode = 0x85
	OpSchedule Opcode = 0xA7
	OpDayTime  Opcode = 0xA8
)

// Actuator commands.
const (
	OpDrive          Opcode = 0x89
	OpDriveDirect    Opcode = 0x91
	OpDrivePWM       Opcode = 0x92
	OpMotors         Opcode = 0x8A
	OpMotorsPWM      Opcode = 0x90
	OpLEDs           Opcode = 0x8B
	OpSchedulingLEDs Opcode = 0xA2
	OpDigitLEDsRaw   Opcode = 0xA3
	OpDigitLEDsASCII Opcode = 0xA4
	OpButtons        Opcode = 0xA5
	OpSong           Opcode = 0x8C
	OpPlay           Opcode = 0x8D
)

// Input commands.
const (
	OpSensors     Opcode = 0x8E
	OpQueryList   Opcode = 0x95
	OpStream      Opcode = 0x94
	OpPauseStream Opcode = 0x96
)

// ParamSpec describes how one command argument is serialized and the
// inclusive range it must satisfy. Width is 1 or 2 bytes, big-endian,
// two's-complement when Signed.
type ParamSpec struct {
	Width  int
	Signed bool
	Min    int
	Max    int
}

func u8(min, max int) ParamSpec  { return ParamSpec{Width: 1, Min: min, Max: max} }
func s8(min, max int) ParamSpec  { return ParamSpec{Width: 1, Signed: true, Min: min, Max: max} }
func s16(min, max int) ParamSpec { return ParamSpec{Width: 2, Signed: true, Min: min, Max: max} }

// CommandSpec describes one OI command: its opcode, ordered fixed
// parameters, an optional repeated tail parameter for the variable-length
// commands (song, query_list, stream), and the modes in which the
// hardware accepts it.
type CommandSpec struct {
	Op     Opcode
	Name   string
	Params []ParamSpec
	Tail   *ParamSpec
	Legal  ModeSet
}

var (
	anyMode    = modeSet(ModeOff, ModePassive, ModeSafe, ModeFull)
	startedSet = modeSet(ModePassive, ModeSafe, ModeFull)
	actuateSet = modeSet(ModeSafe, ModeFull)

	byteTail = u8(0, 255)
)

var commands = map[string]*CommandSpec{
	"start": {Op: OpStart, Name: "start", Legal: anyMode},
	"reset": {Op: OpReset, Name: "reset", Legal: anyMode},
	"stop":  {Op: OpStop, Name: "stop", Legal: startedSet},
	"baud":  {Op: OpBaud, Name: "baud", Params: []ParamSpec{u8(0, 11)}, Legal: startedSet},

	"safe": {Op: OpSafe, Name: "safe", Legal: startedSet},
	"full": {Op: OpFull, Name: "full", Legal: startedSet},

	"clean":     {Op: OpClean, Name: "clean", Legal: startedSet},
	"max":       {Op: OpMax, Name: "max", Legal: startedSet},
	"spot":      {Op: OpSpot, Name: "spot", Legal: startedSet},
	"seek_dock": {Op: OpSeekDock, Name: "seek_dock", Legal: startedSet},
	"power":     {Op: OpPower, Name: "power", Legal: startedSet},

	"schedule":     {Op: OpSchedule, Name: "schedule", Params: scheduleParams(), Legal: startedSet},
	"set_day_time": {Op: OpDayTime, Name: "set_day_time", Params: []ParamSpec{u8(0, 6), u8(0, 23), u8(0, 59)}, Legal: startedSet},

	// radius admits the special values -32768/0x7FFF (straight) and
	// +/-1 (spin in place) on top of the documented -2000..2000 range,
	// so the full signed width is accepted here.
	"drive":        {Op: OpDrive, Name: "drive", Params: []ParamSpec{s16(-500, 500), s16(-32768, 32767)}, Legal: actuateSet},
	"drive_direct": {Op: OpDriveDirect, Name: "drive_direct", Params: []ParamSpec{s16(-500, 500), s16(-500, 500)}, Legal: actuateSet},
	"drive_pwm":    {Op: OpDrivePWM, Name: "drive_pwm", Params: []ParamSpec{s16(-255, 255), s16(-255, 255)}, Legal: actuateSet},

	"motors":     {Op: OpMotors, Name: "motors", Params: []ParamSpec{u8(0, 31)}, Legal: actuateSet},
	"motors_pwm": {Op: OpMotorsPWM, Name: "motors_pwm", Params: []ParamSpec{s8(-127, 127), s8(-127, 127), s8(0, 127)}, Legal: actuateSet},

	"leds":            {Op: OpLEDs, Name: "leds", Params: []ParamSpec{u8(0, 15), u8(0, 255), u8(0, 255)}, Legal: actuateSet},
	"scheduling_leds": {Op: OpSchedulingLEDs, Name: "scheduling_leds", Params: []ParamSpec{u8(0, 127), u8(0, 31)}, Legal: actuateSet},
	"digit_leds_raw":  {Op: OpDigitLEDsRaw, Name: "digit_leds_raw", Params: []ParamSpec{u8(0, 127), u8(0, 127), u8(0, 127), u8(0, 127)}, Legal: actuateSet},
	"digit_leds_ascii": {Op: OpDigitLEDsASCII, Name: "digit_leds_ascii",
		Params: []ParamSpec{u8(32, 126), u8(32, 126), u8(32, 126), u8(32, 126)}, Legal: actuateSet},

	"buttons": {Op: OpButtons, Name: "buttons", Params: []ParamSpec{u8(0, 255)}, Legal: startedSet},
	"song":    {Op: OpSong, Name: "song", Params: []ParamSpec{u8(0, 3), u8(1, 16)}, Tail: &byteTail, Legal: startedSet},
	"play":    {Op: OpPlay, Name: "play", Params: []ParamSpec{u8(0, 3)}, Legal: actuateSet},

	"sensors":             {Op: OpSensors, Name: "sensors", Params: []ParamSpec{u8(0, 255)}, Legal: startedSet},
	"query_list":          {Op: OpQueryList, Name: "query_list", Params: []ParamSpec{u8(1, 255)}, Tail: &byteTail, Legal: startedSet},
	"stream":              {Op: OpStream, Name: "stream", Params: []ParamSpec{u8(1, 255)}, Tail: &byteTail, Legal: startedSet},
	"pause_resume_stream": {Op: OpPauseStream, Name: "pause_resume_stream", Params: []ParamSpec{u8(0, 1)}, Legal: startedSet},
}

// scheduleParams is the days bitmask followed by an (hour, minute) pair
// for each day of the week, sunday first.
func scheduleParams() []ParamSpec {
	ps := make([]ParamSpec, 0, 15)
	ps = append(ps, u8(0, 127))
	for i := 0; i < 7; i++ {
		ps = append(ps, u8(0, 23), u8(0, 59))
	}
	return ps
}

// Command looks up a CommandSpec by name. The catalog is immutable,
// callers must not modify the returned spec.
func Command(name string) (*CommandSpec, bool) {
	spec, ok := commands[name]
	return spec, ok
}
