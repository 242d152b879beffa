package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rkjdid/util"
	"github.com/rovspace/goroomba/roomba"
	"github.com/rovspace/goroomba/web"
)

var (
	conn       *roomba.SerialConnection
	rootConfig *web.Config
)

var (
	device   = flag.String("dev", "", "path to serial port, if empty it will be searched automatically")
	rootPath = flag.String("root", "", "path to goroomba's main directory (defaults to executable path)")
	cfgPath  = flag.String("config", "", "path to config (defaults to <root>/config.toml)")
	verbose  = flag.Bool("v", false, "higher verbosity")
	version  = flag.Bool("version", false, "print version & exit")
)

func init() {
	flag.Parse()

	// print version & exit
	if *version {
		fmt.Printf("goroomba %s\n", Version)
		os.Exit(0)
	}

	if *rootPath == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Fatalf("couldn't get path to executable: %s", err)
		}
		*rootPath = filepath.Dir(exe)
	}
	for _, v := range []string{*rootPath} {
		err := os.MkdirAll(v, 0755)
		if err != nil {
			log.Fatalf("couldn't mkdir \"%s\": %s", v, err)
		}
	}

	if *cfgPath == "" {
		*cfgPath = filepath.Join(*rootPath, "config.toml")
	}

	err := util.ReadTomlFile(&rootConfig, *cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("error reading config \"%s\": %s", *cfgPath, err)
		}
		rootConfig = &web.DefaultConfig
		err = util.WriteTomlFile(rootConfig, *cfgPath)
		if err != nil {
			log.Fatalf("error creating config \"%s\": %s", *cfgPath, err)
		}
		log.Printf("created new config file \"%s\"", *cfgPath)
	}

	if *verbose {
		rootConfig.Web.Verbose = true
	}
	if *device == "" {
		*device = rootConfig.Device
	}

	if *device != "" {
		port, config, err := roomba.OpenPortName(*device)
		if err != nil {
			log.Fatal("error opening serial port: ", err)
		}
		conn = roomba.NewSerial(port, config, *device)
		conn.Start()
	}

	log.Printf("using config file: %s", *cfgPath)
}

func main() {
	if conn == nil {
		var err error
		conn, err = roomba.FindSerial(&rootConfig.Serial)
		if err != nil {
			log.Fatal("no robot found: ", err)
		}
	}

	rb := roomba.New(conn)
	if err := rb.Start(); err != nil && err != roomba.ErrAlreadyStarted {
		log.Printf("no response from robot on port \"%s\": %s", conn.Path(), err)
		os.Exit(1)
	}
	if mode, err := rb.VerifyMode(); err == nil {
		log.Printf("connected to \"%s\" (mode: %s)", conn.Path(), mode)
	} else {
		log.Printf("connected to \"%s\", mode query failed: %s", conn.Path(), err)
	}

	log.Printf("starting conn watcher (poll rate: %s)", rootConfig.Watcher.ConnPollRate)
	watcher := roomba.NewWatcher(rb, &rootConfig.Watcher)
	watcher.WatchConn()

	log.Printf("starting telemetry (interval: %s)", rootConfig.Telemetry.Interval)
	telemetry := web.NewTelemetry(rb, &rootConfig.Telemetry)
	telemetry.Start()

	log.Printf("starting webserver on http://%s ...", rootConfig.Web.ListenAddr)
	go web.StartServer(Version, rb, telemetry, rootConfig, *cfgPath)

	// small delay to allow for panic in StartServer
	<-time.After(time.Millisecond * 500)
	log.Println("Press <Ctrl-C> to quit")

	trap := make(chan os.Signal, 1)
	signal.Notify(trap, os.Kill, os.Interrupt)
	<-trap
	fmt.Println()
	log.Println("quit received...")

	cleanExit := make(chan struct{})
	go func() {
		telemetry.Stop()
		if fpath, err := telemetry.SaveTo(*rootPath, conn.Path(), Version); err != nil {
			log.Println("error saving telemetry:", err)
		} else if fpath != "" {
			log.Printf("saved telemetry to \"%s\"", fpath)
		}
		watcher.Stop()
		rb.Stop()
		if c := rb.Connection(); c != nil {
			c.Close()
		}

		close(cleanExit)
	}()
	select {
	case <-time.After(time.Second * 10):
		log.Panicln("no clean exit after 10sec, please report panic log to https://github.com/rovspace/goroomba/issues")
	case <-cleanExit:
	}
}
