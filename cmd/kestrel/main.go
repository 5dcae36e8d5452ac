// Command kestrel runs the compositor: it loads kestrel.yaml, brings up
// the configured outputs and seats, starts the libinput device pipeline
// where available, and services the Wayland socket until interrupted
// (spec.md §0, §5).
package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kestrelwm/kestrel/internal/compositor"
	"github.com/kestrelwm/kestrel/internal/config"
	"github.com/kestrelwm/kestrel/internal/inputpipe"
	"github.com/kestrelwm/kestrel/internal/logging"
	"github.com/kestrelwm/kestrel/internal/render/gles2"
)

func main() {
	configPath := flag.String("config", "kestrel.yaml", "path to kestrel's YAML configuration file")
	flag.Parse()

	log := logging.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("kestrel: load config")
	}

	st, err := compositor.New(log)
	if err != nil {
		log.Fatal().Err(err).Msg("kestrel: init compositor state")
	}

	for _, outCfg := range cfg.Outputs() {
		o := st.AddOutput(outCfg)
		backend, err := gles2.New(nil, nil, outCfg.Width, outCfg.Height)
		if err != nil {
			log.Warn().Err(err).Str("output", outCfg.Name).Msg("kestrel: no GPU backend for output, it will not render")
			continue
		}
		if err := st.AddRenderer(o, backend, outCfg.RefreshMilliHz/1000); err != nil {
			log.Warn().Err(err).Str("output", outCfg.Name).Msg("kestrel: arm render tick")
		}
	}

	for _, seatCfg := range cfg.Seats() {
		_, sink, err := st.AddSeat(seatCfg, cfg)
		if err != nil {
			log.Fatal().Err(err).Str("seat", seatCfg.Name).Msg("kestrel: add seat")
		}
		pipeline, err := inputpipe.Open(inputpipe.NullSession{}, seatCfg.Name)
		if err != nil {
			log.Warn().Err(err).Str("seat", seatCfg.Name).Msg("kestrel: libinput unavailable, seat has no physical devices")
			continue
		}
		if err := st.Loop.Add(pipeline.Fd(), false, func(events uint32) error {
			return pipeline.Dispatch(sink)
		}); err != nil {
			log.Warn().Err(err).Str("seat", seatCfg.Name).Msg("kestrel: register libinput fd")
		}
	}

	if err := st.Listen(); err != nil {
		log.Fatal().Err(err).Msg("kestrel: listen on Wayland socket")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGHUP, unix.SIGINT, unix.SIGTERM)
	stop := make(chan struct{})
	go func() {
		for sig := range sigCh {
			switch sig {
			case unix.SIGHUP:
				if err := cfg.Reload(); err != nil {
					log.Warn().Err(err).Msg("kestrel: reload config")
				}
			default:
				close(stop)
				return
			}
		}
	}()

	log.Info().Msg("kestrel: compositor ready")
	if err := st.Run(stop, 16*time.Millisecond); err != nil {
		log.Fatal().Err(err).Msg("kestrel: event loop")
	}
}
