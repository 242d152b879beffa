package roomba

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.bug.st/serial.v1"
)

var ErrNoSerialPortFound = errors.New("didn't find a robot on any serial port")
var ErrClosedPort = errors.New("serial port is closed")

var DefaultSerialConfig = &serial.Mode{
	BaudRate: 115200,
	Parity:   serial.NoParity,
	DataBits: 8,
	StopBits: serial.OneStopBit,
}

// DefaultTimeout bounds one exact-count read. The robot answers within
// a few of its 15ms duty cycles, so a second of silence means the link
// is gone.
var DefaultTimeout = time.Second

// SerialConnection adapts a serial port to the Connection interface. The
// underlying library has no read deadline, so reading and writing happen
// in two pump goroutines and the exported calls select against a timer.
type SerialConnection struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	serial.Port
	path   string
	config *serial.Mode

	rdChan    chan []byte
	wrChan    chan []byte
	errChan   chan error
	closeChan chan struct{}
	wg        sync.WaitGroup

	pending []byte
}

func NewSerial(port serial.Port, config *serial.Mode, name string) *SerialConnection {
	// private copy: SetBaudRate mutates the mode, and callers commonly
	// pass the shared DefaultSerialConfig
	mode := *config
	return &SerialConnection{
		Port:      port,
		path:      name,
		config:    &mode,
		rdChan:    make(chan []byte),
		wrChan:    make(chan []byte),
		errChan:   make(chan error),
		closeChan: make(chan struct{}),

		ReadTimeout:  DefaultTimeout,
		WriteTimeout: DefaultTimeout,
	}
}

// Start begins the two routines responsible
// for reading and writing on serial port.
func (sc *SerialConnection) Start() {
	sc.wg.Add(2)
	go func() {
		sc.readRoutine()
		sc.wg.Done()
	}()
	go func() {
		sc.writeRoutine()
		sc.wg.Done()
	}()
}

// Read returns exactly n bytes or fails. Whatever arrived beyond n is
// kept for the next call; the OI has no framing, so byte accounting is
// the only synchronization there is.
func (sc *SerialConnection) Read(n int) ([]byte, error) {
	if len(sc.pending) >= n {
		b := sc.pending[:n:n]
		sc.pending = sc.pending[n:]
		return b, nil
	}
	buf := make([]byte, 0, n)
	buf = append(buf, sc.pending...)
	sc.pending = nil

	deadline := time.After(sc.ReadTimeout)
	for len(buf) < n {
		select {
		case b := <-sc.rdChan:
			buf = append(buf, b...)
		case err := <-sc.errChan:
			return nil, err
		case <-sc.closeChan:
			return nil, ErrClosedPort
		case <-deadline:
			return nil, fmt.Errorf("read timeout (%s): got %d of %d bytes",
				sc.ReadTimeout, len(buf), n)
		}
	}
	if len(buf) > n {
		sc.pending = buf[n:]
		buf = buf[:n]
	}
	return buf, nil
}

// Write pushes b to sc.wrChan, or returns an error
// after sc.WriteTimeout, or if connection is closed.
func (sc *SerialConnection) Write(b []byte) (err error) {
	select {
	case sc.wrChan <- b:
	case <-sc.closeChan:
		err = ErrClosedPort
	case <-time.After(sc.WriteTimeout):
		err = fmt.Errorf("write timeout (%s)", sc.WriteTimeout)
	}
	return err
}

// Close notifies read/write routines to stop, then waits
// for them to return, it then actually closes serial port.
func (sc *SerialConnection) Close() error {
	close(sc.closeChan)
	sc.wg.Wait()
	return sc.Port.Close()
}

// Path returns device name / path of serial port.
func (sc *SerialConnection) Path() string {
	return sc.path
}

// SetBRC drives the robot's BRC pin, wired to RTS (and DTR on some
// cables) on the official serial adapters.
func (sc *SerialConnection) SetBRC(on bool) error {
	if err := sc.Port.SetRTS(on); err != nil {
		return err
	}
	return sc.Port.SetDTR(on)
}

// SetBaudRate reconfigures the port speed after a baud command.
func (sc *SerialConnection) SetBaudRate(rate int) error {
	sc.config.BaudRate = rate
	return sc.Port.SetMode(sc.config)
}

// DrainInput throws away buffered and pending input, e.g. the boot
// banner after a reset.
func (sc *SerialConnection) DrainInput() error {
	sc.pending = nil
	for {
		select {
		case <-sc.rdChan:
		default:
			return sc.Port.ResetInputBuffer()
		}
	}
}

func (sc *SerialConnection) readRoutine() {
	for {
		time.Sleep(time.Millisecond * 5)
		b := make([]byte, 128)
		i, err := sc.Port.Read(b)
		if err != nil {
			select {
			case sc.errChan <- err:
			case <-sc.closeChan:
				return
			}
		} else {
			select {
			case sc.rdChan <- b[:i]:
			case <-sc.closeChan:
				return
			}
		}
	}
}

func (sc *SerialConnection) writeRoutine() {
	var b []byte
	for {
		select {
		case b = <-sc.wrChan:
		case <-sc.closeChan:
			return
		}
		_, err := sc.Port.Write(b)
		if err != nil {
			log.Println("in sc.writeRoutine:", err)
		}
	}
}

// FindSerial tries each available serial port and keeps the first one
// with a robot answering a mode query on the other end. If config is
// nil, DefaultSerialConfig is used.
func FindSerial(config *serial.Mode) (*SerialConnection, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultSerialConfig
	}
	var port serial.Port
	for _, v := range ports {
		port, err = serial.Open(v, config)
		if err != nil {
			continue
		}
		log.Printf("trying \"%s\"...", v)
		conn := NewSerial(port, config, v)
		conn.ReadTimeout = time.Millisecond * 250
		conn.WriteTimeout = time.Millisecond * 250
		conn.Start()
		// probe with a temporary engine: start the OI, ask for packet 35
		rb := New(conn)
		if err = rb.Start(); err == nil {
			if _, err = rb.VerifyMode(); err == nil {
				conn.ReadTimeout = DefaultTimeout
				conn.WriteTimeout = DefaultTimeout
				log.Printf("found robot on \"%s\"", v)
				return conn, nil
			}
		}
		conn.Close()
	}
	if err == nil {
		return nil, ErrNoSerialPortFound
	}
	return nil, err
}

// OpenPortName opens the named port with the default mode.
func OpenPortName(name string) (port serial.Port, config *serial.Mode, err error) {
	config = DefaultSerialConfig
	port, err = serial.Open(name, config)
	return port, config, err
}
