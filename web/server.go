package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rkjdid/util"
	"github.com/rovspace/goroomba/roomba"

	_ "net/http/pprof"
)

type ServerConfig struct {
	ListenAddr        string
	Verbose           bool
	StaticDir         string
	WebsocketInterval util.Duration

	version string
}

var DefaultServerConfig = ServerConfig{
	ListenAddr:        "localhost:6446",
	WebsocketInterval: util.Duration(time.Second),
}

type Server struct {
	Config    *Config
	Robot     *roomba.Roomba
	Telemetry *Telemetry

	cfgPath    string
	router     *mux.Router
	wsUpgrader *websocket.Upgrader
	homeTpl    *template.Template
}

// Status is the live view pushed to websocket subscribers and served
// on /status.
type Status struct {
	Mode     roomba.Mode
	Snapshot roomba.Snapshot `json:",omitempty"`
	Error    string          `json:",omitempty"`
}

// statusPackets is what the live view polls for: battery health plus
// the safety-relevant bits.
var statusPackets = []roomba.SensorID{
	roomba.PacketChargingState,
	roomba.PacketVoltage,
	roomba.PacketCurrent,
	roomba.PacketTemperature,
	roomba.PacketBatteryCharge,
	roomba.PacketBatteryCapacity,
	roomba.PacketBumpsWheelDrops,
	roomba.PacketLightBumper,
}

// StartServer starts a new http.Server using provided version, Roomba & Config.
// It either doesn't return or panics (http.Listen)
func StartServer(version string, rb *roomba.Roomba, tl *Telemetry, cfg *Config, cfgPath string) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	cfg.Web.version = version
	srv := &Server{
		Config:    cfg,
		Robot:     rb,
		Telemetry: tl,
		cfgPath:   cfgPath,
	}
	srv.wsUpgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	srv.homeTpl = template.Must(template.New("home").Parse(homeHTML))

	verbose := srv.Config.Web.Verbose
	srv.router = mux.NewRouter()

	// pprof handlers
	srv.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	// shh
	srv.router.Handle("/favicon.ico", http.HandlerFunc(NilHandler))

	// register endpoints
	srv.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", Logger(http.HandlerFunc(srv.Static), "static", verbose))).
		Methods("GET", "HEAD")
	srv.router.Handle("/websocket",
		Logger(http.HandlerFunc(srv.Websocket), "ws-status", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/config",
		Logger(http.HandlerFunc(srv.ConfigHandler), "config", verbose)).
		Methods("GET", "POST", "HEAD")
	srv.router.Handle("/status",
		Logger(http.HandlerFunc(srv.StatusHandler), "status", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/snapshot",
		Logger(http.HandlerFunc(srv.SnapshotHandler), "snapshot", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/mode",
		Logger(http.HandlerFunc(srv.ModeHandler), "mode", verbose)).
		Methods("GET", "POST", "HEAD")
	srv.router.Handle("/drive",
		Logger(http.HandlerFunc(srv.DriveHandler), "drive", verbose)).
		Methods("POST")
	srv.router.Handle("/stop",
		Logger(http.HandlerFunc(srv.StopHandler), "stop", verbose)).
		Methods("POST")
	srv.router.Handle("/action/{name}",
		Logger(http.HandlerFunc(srv.ActionHandler), "action", verbose)).
		Methods("POST")
	srv.router.Handle("/telemetry",
		Logger(http.HandlerFunc(srv.TelemetryHandler), "telemetry", verbose)).
		Methods("GET", "HEAD")
	srv.router.Handle("/",
		Logger(http.HandlerFunc(srv.Home), "web", verbose)).
		Methods("GET", "HEAD")

	// http root handle on gorilla router
	httpServer := &http.Server{
		Handler:      srv.router,
		Addr:         srv.Config.Web.ListenAddr,
		WriteTimeout: 4 * time.Second,
		ReadTimeout:  4 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal("http.ListenAndServer:", err)
	}
}

func (s *Server) status() Status {
	st := Status{Mode: s.Robot.Mode()}
	if st.Mode == roomba.ModeOff {
		return st
	}
	snap, err := s.Robot.QueryList(statusPackets...)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Snapshot = snap
	return st
}

// Websocket pushes a Status every WebsocketInterval (or ?poll=duration).
func (s *Server) Websocket(w http.ResponseWriter, r *http.Request) {
	var interval = time.Duration(s.Config.Web.WebsocketInterval)
	if v, ok := r.URL.Query()["poll"]; ok {
		if d, err := time.ParseDuration(v[0]); err == nil {
			interval = d
		}
	}
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("error subscribing to websocket:", err)
		http.Error(w, "error subscribing to websocket", 500)
		return
	}

	if s.Config.Web.Verbose {
		log.Printf("websocket - subscription from %s (pollrate: %s)", conn.RemoteAddr(), interval)
	}

	go func(conn *websocket.Conn, s *Server) {
		var err error
		for {
			err = conn.WriteJSON(s.status())
			if err != nil {
				if s.Config.Web.Verbose {
					log.Printf("websocket - lost connection to %s", conn.RemoteAddr())
				}
				conn.Close()
				return
			}
			<-time.After(interval)
		}
	}(conn, s)
}

// ConfigHandler POST: decodes a (possibly partial) json config,
//                     saves it to the config file
//               GET: gets current config
func (s *Server) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		// copy current config, this allows for setting only a subset of the whole config
		var cfg Config = *s.Config
		err := json.NewDecoder(r.Body).Decode(&cfg)
		if err != nil {
			log.Println("error decoding json:", err)
			http.Error(w, "couldn't decode provided json", http.StatusUnprocessableEntity)
			return
		}
		*s.Config = cfg

		// save newly set config
		err = util.WriteTomlFile(s.Config, s.cfgPath)
		if err != nil {
			log.Println("error writing config:", err)
		}
		break
	case http.MethodGet:
		break
	default:
		http.Error(w, fmt.Sprintf("unexpected http-method (%s)", r.Method), http.StatusMethodNotAllowed)
		return
	}

	// encode config regardless of http method
	w.WriteHeader(200)
	_ = json.NewEncoder(w).Encode(s.Config)
	return
}

// StatusHandler encodes the live Status as json to w.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.status())
}

// SnapshotHandler requests every sensor packet (group 100) and encodes
// the snapshot as json to w.
func (s *Server) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Robot.Sensors(roomba.PacketGroupAll)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// ModeHandler GET: believed mode, or ground truth with ?verify=1
//             POST: {"mode": "Safe"} requests a transition
func (s *Server) ModeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct{ Mode roomba.Mode }
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "couldn't decode provided json", http.StatusUnprocessableEntity)
			return
		}
		var err error
		switch req.Mode {
		case roomba.ModeOff:
			err = s.Robot.Stop()
		case roomba.ModePassive:
			if s.Robot.Mode() == roomba.ModeOff {
				err = s.Robot.Start()
			} else {
				err = s.Robot.Passive()
			}
		case roomba.ModeSafe:
			err = s.Robot.Safe()
		case roomba.ModeFull:
			err = s.Robot.Full()
		default:
			http.Error(w, fmt.Sprintf("unknown mode %d", req.Mode), http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
	}

	mode := s.Robot.Mode()
	if _, ok := r.URL.Query()["verify"]; ok && r.Method == http.MethodGet {
		m, err := s.Robot.VerifyMode()
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		mode = m
	}
	_ = json.NewEncoder(w).Encode(struct{ Mode roomba.Mode }{mode})
}

// DriveHandler decodes {"velocity":v,"radius":r} or
// {"right":r,"left":l} and forwards to the matching drive command.
func (s *Server) DriveHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Velocity *int
		Radius   *int
		Right    *int
		Left     *int
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "couldn't decode provided json", http.StatusUnprocessableEntity)
		return
	}
	var err error
	switch {
	case req.Right != nil && req.Left != nil:
		err = s.Robot.DriveDirect(*req.Right, *req.Left)
	case req.Velocity != nil && req.Radius != nil:
		err = s.Robot.Drive(*req.Velocity, *req.Radius)
	case req.Velocity != nil:
		err = s.Robot.DriveStraight(*req.Velocity)
	default:
		http.Error(w, "need velocity[+radius] or right+left", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	w.Write([]byte("ok"))
}

func (s *Server) StopHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Robot.DriveStop(); err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	w.Write([]byte("wheels stopped"))
}

// ActionHandler exposes the one-shot commands: /action/clean, spot,
// dock, power, wake, reset.
func (s *Server) ActionHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var err error
	switch name {
	case "clean":
		err = s.Robot.Clean()
	case "max":
		err = s.Robot.Max()
	case "spot":
		err = s.Robot.Spot()
	case "dock":
		err = s.Robot.SeekDock()
	case "power":
		err = s.Robot.Power()
	case "wake":
		err = s.Robot.Wake()
	case "reset":
		err = s.Robot.Reset()
	default:
		http.Error(w, fmt.Sprintf("unknown action \"%s\"", name), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	w.Write([]byte(name + " ok"))
}

// TelemetryHandler encodes recorded samples as json to w.
func (s *Server) TelemetryHandler(w http.ResponseWriter, r *http.Request) {
	if s.Telemetry == nil {
		http.Error(w, "telemetry is disabled", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(s.Telemetry.Samples())
}

// Static server
func (s *Server) Static(w http.ResponseWriter, r *http.Request) {
	var tpath = filepath.Join(s.Config.Web.StaticDir, r.URL.Path)
	f, err := os.Open(tpath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", mime.TypeByExtension(path.Ext(r.URL.Path)))
	_, err = io.Copy(w, f)
	if err != nil {
		serr := fmt.Sprintf("io.Copy %s: %s", tpath, err)
		log.Println(serr)
		http.Error(w, serr, 500)
	}
	return
}

// Home serves homepage
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	err := s.homeTpl.Execute(w, struct {
		Version string
		Status  Status
	}{s.Config.Web.version, s.status()})
	if err != nil {
		serr := fmt.Sprintf("error executing home template: %s", err)
		log.Println(serr)
		http.Error(w, serr, http.StatusInternalServerError)
	}
}

// httpStatus maps engine errors to http codes: session and mode errors
// are the client's fault, channel errors are the gateway's.
func httpStatus(err error) int {
	switch err.(type) {
	case *roomba.IllegalModeError, *roomba.ArgumentRangeError, *roomba.ArityError:
		return http.StatusConflict
	case *roomba.ChannelError:
		return http.StatusBadGateway
	}
	switch err {
	case roomba.ErrNotStarted, roomba.ErrStopped, roomba.ErrAlreadyStarted:
		return http.StatusConflict
	case roomba.ErrNoBRC:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

const homeHTML = `<!DOCTYPE html>
<html>
<head><title>goroomba {{.Version}}</title></head>
<body>
<h1>goroomba <small>{{.Version}}</small></h1>
<p>mode: <b id="mode">{{.Status.Mode}}</b></p>
<pre id="status"></pre>
<p>
<button onclick="mode('Passive')">passive</button>
<button onclick="mode('Safe')">safe</button>
<button onclick="mode('Full')">full</button>
<button onclick="post('/stop')">stop wheels</button>
<button onclick="post('/action/dock')">dock</button>
<button onclick="post('/action/clean')">clean</button>
</p>
<script>
function post(url, body) {
	fetch(url, {method: "POST", body: body ? JSON.stringify(body) : null})
}
function mode(m) { post("/mode", {Mode: m}) }
var ws = new WebSocket("ws://" + location.host + "/websocket")
ws.onmessage = function (ev) {
	var st = JSON.parse(ev.data)
	document.getElementById("mode").innerText = st.Mode
	document.getElementById("status").innerText = JSON.stringify(st.Snapshot || st.Error, null, 1)
}
</script>
</body>
</html>
`
