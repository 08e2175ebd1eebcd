package main

import (
	"flag"
	"net/http"

	"github.com/facebookgo/httpdown"
)

func main() {
	cfg := defaultConfig()
	cfg.register(flag.CommandLine)
	flag.Parse()

	if err := configureLogger(cfg.LogLevel, cfg.LogJSON); err != nil {
		logger.WithError(err).Fatal("bad -log.level")
	}

	s, err := newServer(cfg)
	if err != nil {
		logger.WithError(err).Fatal("creating server")
	}
	defer s.close()

	startMetrics(cfg.MetricsTick)
	defer finalMetrics()
	defer m.halt()

	// Prepare the stoppable HTTP server
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: newHandler(s),
	}
	hd := &httpdown.HTTP{
		StopTimeout: cfg.StopTimeout,
		KillTimeout: cfg.KillTimeout,
	}

	logger.WithField("addr", cfg.Addr).Info("listening")
	if err := httpdown.ListenAndServe(server, hd); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
