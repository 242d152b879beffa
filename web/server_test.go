package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rovspace/goroomba/roomba"
)

// scriptConn is an in-memory stand-in for the serial link.
type scriptConn struct {
	in bytes.Buffer
}

func (c *scriptConn) Write(b []byte) error { return nil }

func (c *scriptConn) Read(n int) ([]byte, error) {
	if c.in.Len() < n {
		return nil, errors.New("read timeout: no data scripted")
	}
	b := make([]byte, n)
	c.in.Read(b)
	return b, nil
}

func (c *scriptConn) Close() error { return nil }

func testServer(conn *scriptConn) *Server {
	rb := roomba.New(conn)
	rb.Start()
	cfg := DefaultConfig
	return &Server{
		Config: &cfg,
		Robot:  rb,
	}
}

func TestModeHandler(t *testing.T) {
	conn := &scriptConn{}
	srv := testServer(conn)

	r := httptest.NewRequest("POST", "/mode", strings.NewReader(`{"Mode":"Safe"}`))
	w := httptest.NewRecorder()
	srv.ModeHandler(w, r)
	if w.Code != 200 {
		t.Fatalf("POST /mode: %d %s", w.Code, w.Body)
	}
	var resp struct{ Mode roomba.Mode }
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != roomba.ModeSafe {
		t.Errorf("mode = %s, want Safe", resp.Mode)
	}

	// verify reads the mode sensor; script a passive demotion
	conn.in.Write([]byte{0x01})
	r = httptest.NewRequest("GET", "/mode?verify=1", nil)
	w = httptest.NewRecorder()
	srv.ModeHandler(w, r)
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != roomba.ModePassive {
		t.Errorf("verified mode = %s, want Passive", resp.Mode)
	}
}

func TestDriveHandlerConflict(t *testing.T) {
	srv := testServer(&scriptConn{})

	// still passive, driving must be refused with 409
	r := httptest.NewRequest("POST", "/drive", strings.NewReader(`{"Velocity":100,"Radius":0}`))
	w := httptest.NewRecorder()
	srv.DriveHandler(w, r)
	if w.Code != 409 {
		t.Errorf("drive in passive: %d, want 409", w.Code)
	}

	srv.Robot.Safe()
	r = httptest.NewRequest("POST", "/drive", strings.NewReader(`{"Right":100,"Left":-100}`))
	w = httptest.NewRecorder()
	srv.DriveHandler(w, r)
	if w.Code != 200 {
		t.Errorf("drive_direct in safe: %d %s", w.Code, w.Body)
	}
}

func TestActionHandler(t *testing.T) {
	srv := testServer(&scriptConn{})

	r := httptest.NewRequest("POST", "/action/clean", nil)
	r = mux.SetURLVars(r, map[string]string{"name": "clean"})
	w := httptest.NewRecorder()
	srv.ActionHandler(w, r)
	if w.Code != 200 {
		t.Errorf("clean: %d %s", w.Code, w.Body)
	}

	r = httptest.NewRequest("POST", "/action/flee", nil)
	r = mux.SetURLVars(r, map[string]string{"name": "flee"})
	w = httptest.NewRecorder()
	srv.ActionHandler(w, r)
	if w.Code != 404 {
		t.Errorf("unknown action: %d, want 404", w.Code)
	}
}

func TestStatusOff(t *testing.T) {
	srv := testServer(&scriptConn{})
	srv.Robot.Stop()

	w := httptest.NewRecorder()
	srv.StatusHandler(w, httptest.NewRequest("GET", "/status", nil))
	var st Status
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Mode != roomba.ModeOff || len(st.Snapshot) != 0 {
		t.Errorf("status off = %+v", st)
	}
}

func TestLoggerWrapsStatus(t *testing.T) {
	var inner http.ResponseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = w
		http.Error(w, "refused", http.StatusConflict)
	}), "test", true)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	cw, ok := inner.(*CustomResponseWriter)
	if !ok {
		t.Fatal("handler did not receive a CustomResponseWriter")
	}
	if cw.Status != http.StatusConflict {
		t.Errorf("recorded status = %d, want 409", cw.Status)
	}
	// an already wrapped writer is not wrapped again
	if WrapCustomRW(inner) != inner {
		t.Error("WrapCustomRW re-wrapped a wrapped writer")
	}
}

func TestTelemetrySample(t *testing.T) {
	conn := &scriptConn{}
	rb := roomba.New(conn)
	rb.Start()
	tl := NewTelemetry(rb, nil)

	// charging-state, voltage, current, temperature, charge, capacity
	conn.in.Write([]byte{2, 0x3F, 0x6A, 0xFE, 0x0C, 0x19, 0x03, 0xE8, 0x07, 0xD0})
	s, err := tl.sample()
	if err != nil {
		t.Fatal(err)
	}
	if s.Charging != roomba.FullCharging {
		t.Errorf("charging = %s", s.Charging)
	}
	if s.Voltage != 16234 || s.Current != -500 || s.Temperature != 25 {
		t.Errorf("sample = %+v", s)
	}
	if s.Charge != 1000 || s.Capacity != 2000 {
		t.Errorf("sample = %+v", s)
	}
	if s.Mode != roomba.ModePassive {
		t.Errorf("mode = %s", s.Mode)
	}
}
