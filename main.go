// flipbook plays an animated GIF headlessly: frames are decoded lazily
// on a background worker while a display clock drives the cursor, and
// every frame/loop change is reported on standard error.
//
// Usage:
//
//	flipbook <file.gif>
//
// SIGUSR1 simulates a platform memory-pressure signal; SIGINT stops
// playback and exits.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/flipbook/internal/anim"
	"github.com/llehouerou/flipbook/internal/config"
	"github.com/llehouerou/flipbook/internal/playback"
	"github.com/llehouerou/flipbook/internal/player"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 2 {
		return fmt.Errorf("usage: %s <file.gif>", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	provider, err := anim.OpenGIF(os.Args[1])
	if err != nil {
		return err
	}

	driver, err := player.New(provider, player.Options{
		PlaybackRate:   cfg.PlaybackRate,
		MaxBufferBytes: cfg.MaxBufferBytes,
		TickInterval:   cfg.TickInterval(),
	})
	if err != nil {
		return err
	}

	svc := playback.New(driver)
	defer svc.Close()

	sub := svc.Subscribe()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	lowMemory := make(chan os.Signal, 1)
	signal.Notify(lowMemory, syscall.SIGUSR1)

	svc.Start()

	for {
		select {
		case e := <-sub.FrameChanged:
			logrus.WithField("frame", e.Index).Debug("frame changed")
		case e := <-sub.LoopChanged:
			logrus.WithField("loop", e.Loop).Info("loop completed")
		case e := <-sub.StateChanged:
			logrus.WithFields(logrus.Fields{
				"from": e.Previous,
				"to":   e.Current,
			}).Info("state changed")
			if e.Current == playback.StateStopped {
				return nil
			}
		case <-lowMemory:
			logrus.Warn("memory pressure signalled")
			svc.LowMemory()
		case <-interrupt:
			svc.Stop()
			return nil
		}
	}
}
