package web

import (
	"github.com/rkjdid/util"
	"github.com/rovspace/goroomba/roomba"
	"go.bug.st/serial.v1"
)

var DefaultConfig = Config{
	Web:       DefaultServerConfig,
	Watcher:   roomba.DefaultWatcherConfig,
	Serial:    *roomba.DefaultSerialConfig,
	Telemetry: DefaultTelemetryConfig,
}

type Config struct {
	Device    string
	Web       ServerConfig
	Watcher   roomba.WatcherConfig
	Serial    serial.Mode
	Telemetry TelemetryConfig
}

type TelemetryConfig struct {
	Interval util.Duration
	// MaxSamples caps the in-memory log; oldest samples are dropped
	// once reached. Zero means unbounded.
	MaxSamples int
}
