package roomba

//go:generate stringer -type=Mode

// Mode is the robot's Open Interface operating mode. The numeric values
// match what the oi-mode sensor (packet 35) reports.
type Mode int

const (
	ModeOff     Mode = 0
	ModePassive Mode = 1
	ModeSafe    Mode = 2
	ModeFull    Mode = 3
)

// ModeSet is a set of modes a command is legal in.
type ModeSet uint8

func modeSet(ms ...Mode) ModeSet {
	var s ModeSet
	for _, m := range ms {
		s |= 1 << uint(m)
	}
	return s
}

// Has reports whether m is in the set.
func (s ModeSet) Has(m Mode) bool {
	return m >= 0 && m <= ModeFull && s&(1<<uint(m)) != 0
}

func (s ModeSet) String() string {
	out := ""
	for m := ModeOff; m <= ModeFull; m++ {
		if !s.Has(m) {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += m.String()
	}
	if out == "" {
		return "none"
	}
	return out
}

// ModeTracker holds the driver's belief about the current OI mode and
// enforces the legal transitions and the session bracket (start first,
// stop last).
//
// The belief is advisory: the hardware demotes itself from Safe to
// Passive on a safety trip (cliff, wheel drop, charger) without telling
// anyone. Callers that need ground truth must read packet 35 and feed
// the result to Observe.
type ModeTracker struct {
	mode    Mode
	started bool
	stopped bool
}

// NewModeTracker returns a tracker in the Off state.
func NewModeTracker() *ModeTracker {
	return &ModeTracker{mode: ModeOff}
}

// Current returns the believed mode.
func (t *ModeTracker) Current() Mode { return t.mode }

// Start opens a session: Off -> Passive. It must be the first
// transition; starting an already-started session fails.
func (t *ModeTracker) Start() error {
	if t.mode != ModeOff {
		return ErrAlreadyStarted
	}
	t.mode = ModePassive
	t.started = true
	t.stopped = false
	return nil
}

// Stop closes the session: any -> Off. Nothing but Start is accepted
// afterwards.
func (t *ModeTracker) Stop() error {
	if !t.started {
		if t.stopped {
			return ErrStopped
		}
		return ErrNotStarted
	}
	t.mode = ModeOff
	t.started = false
	t.stopped = true
	return nil
}

// To records an explicit transition to Passive, Safe or Full within a
// started session.
func (t *ModeTracker) To(m Mode) error {
	if !t.started {
		if t.stopped {
			return ErrStopped
		}
		return ErrNotStarted
	}
	if m == ModeOff {
		return t.Stop()
	}
	t.mode = m
	return nil
}

// Observe reconciles the belief with a mode actually reported by the
// hardware, typically after reading packet 35. An observed Off means the
// robot went dark on its own and the session is no longer live.
func (t *ModeTracker) Observe(m Mode) {
	t.mode = m
	if m == ModeOff {
		t.started = false
	}
}

// Check validates that a command is currently legal. The answer is based
// on the belief and therefore advisory: it rejects obviously wrong calls
// but cannot rule out that the hardware demoted itself a moment ago.
func (t *ModeTracker) Check(spec *CommandSpec) error {
	if !t.started {
		if spec.Op == OpStart || spec.Op == OpReset {
			return nil
		}
		if t.stopped {
			return ErrStopped
		}
		return ErrNotStarted
	}
	if !spec.Legal.Has(t.mode) {
		return &IllegalModeError{Name: spec.Name, Mode: t.mode, Legal: spec.Legal}
	}
	return nil
}
