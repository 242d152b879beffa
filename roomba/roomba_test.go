package roomba

import (
	"bytes"
	"errors"
	"testing"
)

// loopConn is a scripted stand-in for the serial link: it records every
// frame written and serves reads from a pre-loaded buffer.
type loopConn struct {
	wrote [][]byte
	in    bytes.Buffer
	wErr  error
	rErr  error
}

func (c *loopConn) Write(b []byte) error {
	if c.wErr != nil {
		return c.wErr
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	c.wrote = append(c.wrote, cp)
	return nil
}

func (c *loopConn) Read(n int) ([]byte, error) {
	if c.rErr != nil {
		return nil, c.rErr
	}
	if c.in.Len() < n {
		return nil, errors.New("read timeout: no data scripted")
	}
	b := make([]byte, n)
	c.in.Read(b)
	return b, nil
}

func (c *loopConn) Close() error { return nil }

func (c *loopConn) lastWrite() []byte {
	if len(c.wrote) == 0 {
		return nil
	}
	return c.wrote[len(c.wrote)-1]
}

// capConn is a loopConn that also exposes the optional channel
// capabilities: BRC pin, baud reconfiguration, input drain.
type capConn struct {
	loopConn
	brc     []bool
	baud    int
	drained bool
}

func (c *capConn) SetBRC(on bool) error       { c.brc = append(c.brc, on); return nil }
func (c *capConn) SetBaudRate(rate int) error { c.baud = rate; return nil }
func (c *capConn) DrainInput() error          { c.drained = true; return nil }

func TestSessionScenario(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)

	if err := rb.DriveStraight(100); err != ErrNotStarted {
		t.Fatalf("drive before start: got %v, want ErrNotStarted", err)
	}
	if len(conn.wrote) != 0 {
		t.Fatal("bytes written before start")
	}

	if err := rb.Start(); err != nil {
		t.Fatal(err)
	}
	expect(t, "mode after start", rb.Mode().String(), "Passive")
	if !bytes.Equal(conn.lastWrite(), []byte{0x80}) {
		t.Errorf("start wrote % x", conn.lastWrite())
	}

	if err := rb.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second start: got %v, want ErrAlreadyStarted", err)
	}

	// actuation is illegal in passive, and nothing may hit the wire
	wires := len(conn.wrote)
	err := rb.DriveStraight(100)
	if _, ok := err.(*IllegalModeError); !ok {
		t.Fatalf("drive in passive: got %v, want IllegalModeError", err)
	}
	if len(conn.wrote) != wires {
		t.Fatal("illegal command reached the wire")
	}

	if err := rb.Safe(); err != nil {
		t.Fatal(err)
	}
	expect(t, "mode after safe", rb.Mode().String(), "Safe")

	if err := rb.Drive(100, RadiusStraight); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x89, 0x00, 0x64, 0x80, 0x00}) {
		t.Errorf("drive wrote % x", conn.lastWrite())
	}

	if err := rb.Stop(); err != nil {
		t.Fatal(err)
	}
	expect(t, "mode after stop", rb.Mode().String(), "Off")

	if err := rb.DriveStop(); err != ErrStopped {
		t.Fatalf("drive after stop: got %v, want ErrStopped", err)
	}
	if _, err := rb.Voltage(); err != ErrStopped {
		t.Fatalf("sensor after stop: got %v, want ErrStopped", err)
	}
}

func TestSensorRequest(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	conn.in.Write([]byte{0x3F, 0x6A})
	mv, err := rb.Voltage()
	if err != nil {
		t.Fatal(err)
	}
	if mv != 16234 {
		t.Errorf("voltage = %d, want 16234", mv)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x8E, 0x16}) {
		t.Errorf("sensors request wrote % x", conn.lastWrite())
	}
}

func TestQueryList(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	conn.in.Write([]byte{0xEC, 0x3F, 0x6A})
	snap, err := rb.QueryList(PacketTemperature, PacketVoltage)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x95, 0x02, 0x18, 0x16}) {
		t.Errorf("query_list wrote % x", conn.lastWrite())
	}
	if snap[0].ID != PacketTemperature || snap[0].Int != -20 {
		t.Errorf("snapshot[0] = %+v", snap[0])
	}
	if snap[1].ID != PacketVoltage || snap[1].Int != 16234 {
		t.Errorf("snapshot[1] = %+v", snap[1])
	}
}

func TestVerifyModeDemotion(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()
	rb.Safe()
	expect(t, "believed", rb.Mode().String(), "Safe")

	// hardware hit a cliff and silently dropped to passive; only the
	// mode sensor reveals it
	conn.in.Write([]byte{0x01})
	m, err := rb.VerifyMode()
	if err != nil {
		t.Fatal(err)
	}
	expect(t, "reported", m.String(), "Passive")
	expect(t, "reconciled", rb.Mode().String(), "Passive")
}

func TestChannelErrors(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	conn.wErr = errors.New("broken pipe")
	err := rb.Clean()
	ce, ok := err.(*ChannelError)
	if !ok {
		t.Fatalf("write failure: got %v, want ChannelError", err)
	}
	expect(t, "channel op", ce.Op, "write")
	// the failed transition must not have been applied
	expect(t, "mode unchanged", rb.Mode().String(), "Passive")

	conn.wErr = nil
	conn.rErr = errors.New("read timeout")
	if _, err := rb.Voltage(); err == nil {
		t.Fatal("read failure: expected ChannelError")
	}
}

func TestGroupSnapshot(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	// group 2 answer: ir-omni, buttons, distance, angle
	conn.in.Write([]byte{0x00, 0x01, 0x00, 0x64, 0xFF, 0xA6})
	snap, err := rb.Sensors(PacketGroup2)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 4 {
		t.Fatalf("snapshot has %d entries, want 4", len(snap))
	}
	if v, _ := snap.Get(PacketDistance); v.Int != 100 {
		t.Errorf("distance = %d, want 100", v.Int)
	}
	if v, _ := snap.Get(PacketAngle); v.Int != -90 {
		t.Errorf("angle = %d, want -90", v.Int)
	}
}

func TestSongAndButtons(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	if err := rb.Song(0, []Note{{60, 32}, {64, 32}}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x8C, 0x00, 0x02, 0x3C, 0x20, 0x40, 0x20}) {
		t.Errorf("song wrote % x", conn.lastWrite())
	}
	if err := rb.Song(1, nil); err != ErrSongNotes {
		t.Errorf("empty song: got %v, want ErrSongNotes", err)
	}

	if err := rb.PressButtons(true, false, true, false, false, false, false, false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0xA5, 0x05}) {
		t.Errorf("buttons wrote % x", conn.lastWrite())
	}
}

func TestSchedule(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()

	var week [7]*ClockTime
	week[Monday] = &ClockTime{Hour: 9, Minute: 30}
	week[Friday] = &ClockTime{Hour: 18, Minute: 0}
	if err := rb.Schedule(week); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xA7, 0x22,
		0, 0, 9, 30, 0, 0, 0, 0, 0, 0, 18, 0, 0, 0}
	if !bytes.Equal(conn.lastWrite(), want) {
		t.Errorf("schedule wrote % x, want % x", conn.lastWrite(), want)
	}

	// disabled schedule is all zeroes
	if err := rb.Schedule([7]*ClockTime{}); err != nil {
		t.Fatal(err)
	}
	if conn.lastWrite()[1] != 0 {
		t.Errorf("empty schedule wrote days %#02x", conn.lastWrite()[1])
	}
}

func TestDigitLEDsASCII(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()
	rb.Full()

	if err := rb.DigitLEDsASCII("ok"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0xA4, 'O', 'K', ' ', ' '}) {
		t.Errorf("digits wrote % x", conn.lastWrite())
	}
	if err := rb.DigitLEDsASCII("toolong"); err != ErrAsciiLen {
		t.Errorf("long text: got %v, want ErrAsciiLen", err)
	}
}

func TestWake(t *testing.T) {
	rb := New(&loopConn{})
	if err := rb.Wake(); err != ErrNoBRC {
		t.Fatalf("wake without BRC pin: got %v, want ErrNoBRC", err)
	}

	conn := &capConn{}
	rb = New(conn)
	if err := rb.Wake(); err != nil {
		t.Fatal(err)
	}
	if len(conn.brc) != 2 || conn.brc[0] || !conn.brc[1] {
		t.Errorf("brc pulse = %v, want low then high", conn.brc)
	}
	if len(conn.wrote) != 0 {
		t.Error("wake wrote bytes to the command channel")
	}
}

func TestBaud(t *testing.T) {
	conn := &capConn{}
	rb := New(conn)
	rb.Start()

	if err := rb.Baud(12345); err != ErrBaudRate {
		t.Fatalf("bad rate: got %v, want ErrBaudRate", err)
	}
	if err := rb.Baud(19200); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x81, 0x07}) {
		t.Errorf("baud wrote % x", conn.lastWrite())
	}
	if conn.baud != 19200 {
		t.Errorf("port reconfigured to %d, want 19200", conn.baud)
	}

	// a channel without baud control still accepts the command
	plain := &loopConn{}
	rb = New(plain)
	rb.Start()
	if err := rb.Baud(57600); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain.lastWrite(), []byte{0x81, 0x0A}) {
		t.Errorf("baud wrote % x", plain.lastWrite())
	}
}

func TestReset(t *testing.T) {
	conn := &capConn{}
	rb := New(conn)
	rb.Start()
	rb.Full()

	if err := rb.Reset(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.lastWrite(), []byte{0x07}) {
		t.Errorf("reset wrote % x", conn.lastWrite())
	}
	if !conn.drained {
		t.Error("boot banner was not drained")
	}
	expect(t, "mode after reset", rb.Mode().String(), "Off")

	// a reset robot may be started again
	if err := rb.Start(); err != nil {
		t.Fatal(err)
	}
	expect(t, "mode after restart", rb.Mode().String(), "Passive")
}

func TestReconnectRestoresMode(t *testing.T) {
	conn := &loopConn{}
	rb := New(conn)
	rb.Start()
	rb.Full()

	fresh := &loopConn{}
	if err := rb.Reconnect(fresh); err != nil {
		t.Fatal(err)
	}
	if len(fresh.wrote) != 2 ||
		!bytes.Equal(fresh.wrote[0], []byte{0x80}) ||
		!bytes.Equal(fresh.wrote[1], []byte{0x84}) {
		t.Errorf("reconnect wrote %v, want start+full", fresh.wrote)
	}
	expect(t, "belief kept", rb.Mode().String(), "Full")
	if rb.Connection() != Connection(fresh) {
		t.Error("Connection() does not report the swapped channel")
	}
}
