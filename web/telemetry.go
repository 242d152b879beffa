package web

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/rkjdid/util"
	"github.com/rovspace/goroomba/roomba"
)

var DefaultTelemetryConfig = TelemetryConfig{
	Interval:   util.Duration(time.Second * 10),
	MaxSamples: 8640, // a day at the default rate
}

// Sample is one battery/mode reading.
type Sample struct {
	Time        time.Time
	Mode        roomba.Mode
	Charging    roomba.ChargingState
	Voltage     int // mV
	Current     int // mA, negative while discharging
	Temperature int // °C
	Charge      int // mAh
	Capacity    int // mAh
}

var telemetryPackets = []roomba.SensorID{
	roomba.PacketChargingState,
	roomba.PacketVoltage,
	roomba.PacketCurrent,
	roomba.PacketTemperature,
	roomba.PacketBatteryCharge,
	roomba.PacketBatteryCapacity,
}

// Telemetry periodically samples battery packets from the robot and
// keeps them in memory until saved to a toml log file.
type Telemetry struct {
	rb  *roomba.Roomba
	cfg *TelemetryConfig

	mu      sync.Mutex
	samples []Sample

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewTelemetry(rb *roomba.Roomba, cfg *TelemetryConfig) *Telemetry {
	if cfg == nil {
		cfg = &DefaultTelemetryConfig
	}
	return &Telemetry{
		rb:  rb,
		cfg: cfg,
	}
}

// Start launches the sampling loop. To stop it, call Stop().
func (t *Telemetry) Start() {
	t.stopCh = make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-time.After(time.Duration(t.cfg.Interval)):
			case <-t.stopCh:
				return
			}
			if t.rb.Mode() == roomba.ModeOff {
				// no session, the robot won't answer sensor requests
				continue
			}
			s, err := t.sample()
			if err != nil {
				log.Println("telemetry:", err)
				continue
			}
			t.mu.Lock()
			t.samples = append(t.samples, s)
			if max := t.cfg.MaxSamples; max > 0 && len(t.samples) > max {
				t.samples = t.samples[len(t.samples)-max:]
			}
			t.mu.Unlock()
		}
	}()
}

func (t *Telemetry) Stop() {
	if t.stopCh == nil {
		return
	}
	close(t.stopCh)
	t.wg.Wait()
	t.stopCh = nil
}

func (t *Telemetry) sample() (Sample, error) {
	snap, err := t.rb.QueryList(telemetryPackets...)
	if err != nil {
		return Sample{}, err
	}
	s := Sample{
		Time: time.Now(),
		Mode: t.rb.Mode(),
	}
	for _, v := range snap {
		switch v.ID {
		case roomba.PacketChargingState:
			s.Charging = roomba.ChargingState(v.Int)
		case roomba.PacketVoltage:
			s.Voltage = v.Int
		case roomba.PacketCurrent:
			s.Current = v.Int
		case roomba.PacketTemperature:
			s.Temperature = v.Int
		case roomba.PacketBatteryCharge:
			s.Charge = v.Int
		case roomba.PacketBatteryCapacity:
			s.Capacity = v.Int
		}
	}
	return s, nil
}

// Samples returns a copy of the recorded samples.
func (t *Telemetry) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// SaveTo writes recorded samples as a TelemetryLog file in dir and
// clears the in-memory log. Nothing recorded, nothing written.
func (t *Telemetry) SaveTo(dir, device, version string) (string, error) {
	t.mu.Lock()
	samples := t.samples
	t.samples = nil
	t.mu.Unlock()
	if len(samples) == 0 {
		return "", nil
	}
	tl := TelemetryLog{
		Device:   device,
		Version:  version,
		Interval: t.cfg.Interval,
		Samples:  samples,
	}
	fpath := filepath.Join(dir, tl.FileName())
	return fpath, util.WriteTomlFile(tl, fpath)
}

// TelemetryLog is the on-disk shape of one recording session.
type TelemetryLog struct {
	Device   string
	Version  string
	Interval util.Duration
	Samples  []Sample
}

func (tl TelemetryLog) Info() TelemetryLogInfo {
	info := TelemetryLogInfo{
		Device:  tl.Device,
		Count:   len(tl.Samples),
		Version: tl.Version,
	}
	if len(tl.Samples) > 0 {
		info.StartTime = tl.Samples[0].Time
		info.EndTime = tl.Samples[len(tl.Samples)-1].Time
	}
	return info
}

func (tl TelemetryLog) FileName() string {
	return tl.Info().FileName()
}

func (tl TelemetryLog) String() string {
	return tl.Info().String()
}

type TelemetryLogInfo struct {
	Device    string
	Version   string
	Count     int
	StartTime time.Time
	EndTime   time.Time
	relPath   string
}

func (tli TelemetryLogInfo) String() string {
	return tli.Path()
}

func (tli TelemetryLogInfo) Path() string {
	if len(tli.relPath) > 0 {
		return tli.relPath
	}
	return tli.FileName()
}

func (tli TelemetryLogInfo) FileName() string {
	return fmt.Sprintf("telemetry_%s_%s.log",
		filepath.Base(tli.Device),
		tli.StartTime.Format("2006-01-02_15h04m05"))
}

func ListTelemetryLogs(dir string) (err error, infos []TelemetryLogInfo) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return err, nil
	}
	for _, fi := range files {
		var fpath = filepath.Join(dir, fi.Name())
		var tl TelemetryLog
		err = util.ReadTomlFile(&tl, fpath)
		if err != nil {
			log.Printf("error parsing telemetry log: %s", err)
		} else {
			info := tl.Info()
			info.relPath = fi.Name()
			infos = append(infos, info)
		}
	}
	return nil, infos
}
