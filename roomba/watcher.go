package roomba

import (
	"log"
	"sync"
	"time"

	"github.com/rkjdid/util"
)

// Watcher keeps one engine's link and mode belief honest: it polls the
// mode sensor, logs autonomous demotions, and rediscovers the serial
// port when the link dies. Reconnecting is composition-root plumbing,
// not protocol behavior: the engine itself never retries anything.
type Watcher struct {
	rb     *Roomba
	cfg    *WatcherConfig
	stopCh chan struct{}
	wg     sync.WaitGroup
}

type WatcherConfig struct {
	ConnPollRate util.Duration
}

var DefaultWatcherConfig = WatcherConfig{
	ConnPollRate: util.Duration(time.Second * 5),
}

func NewWatcher(rb *Roomba, cfg *WatcherConfig) *Watcher {
	if cfg == nil {
		cfg = &DefaultWatcherConfig
	}
	return &Watcher{
		rb:  rb,
		cfg: cfg,
	}
}

func (w *Watcher) Stop() {
	if w.stopCh == nil {
		return
	}
	log.Println("stopping conn watcher")
	close(w.stopCh)
	w.wg.Wait()
}

// WatchConn starts the polling loop. To stop it, call Stop().
func (w *Watcher) WatchConn() {
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-time.After(time.Duration(w.cfg.ConnPollRate)):
			case <-w.stopCh:
				w.stopCh = nil
				return
			}

			believed := w.rb.Mode()
			if believed == ModeOff {
				// no session, nothing to verify
				continue
			}

			reported, err := w.rb.VerifyMode()
			if err == nil {
				if reported != believed {
					// hardware demoted itself (safety trip) or rebooted
					log.Printf("mode drift: believed %s, robot reports %s", believed, reported)
				}
				continue
			}

			log.Printf("lost robot (%s), rescanning serial ports", err)
			if old, ok := w.rb.Connection().(*SerialConnection); ok {
				old.Close()
			}
			conn, err := FindSerial(nil)
			if err != nil {
				// no luck, next round
				continue
			}
			if err = w.rb.Reconnect(conn); err != nil {
				log.Println("in rb.Reconnect:", err)
			}
		}
	}()
}
