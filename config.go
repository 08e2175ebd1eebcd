package main

import (
	"flag"
	"time"
)

type config struct {
	Addr        string
	Origin      string
	StopTimeout time.Duration
	KillTimeout time.Duration
	MetricsTick time.Duration
	LogLevel    string
	LogJSON     bool

	// Per-connection action throttling.
	Rate  float64
	Burst int

	PingPeriod time.Duration
}

func defaultConfig() config {
	return config{
		Addr:        "127.0.0.1:8081",
		StopTimeout: 10 * time.Second,
		KillTimeout: 1 * time.Second,
		MetricsTick: 60 * time.Second,
		LogLevel:    "info",
		Rate:        5,
		Burst:       10,
		PingPeriod:  pingPeriod,
	}
}

func (c *config) register(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "http service address")
	fs.StringVar(&c.Origin, "origin", c.Origin, "websocket server checks Origin headers against this scheme://host[:port]")
	fs.DurationVar(&c.StopTimeout, "stop-timeout", c.StopTimeout, "stop timeout")
	fs.DurationVar(&c.KillTimeout, "kill-timeout", c.KillTimeout, "kill timeout")
	fs.DurationVar(&c.MetricsTick, "metrics.tick", c.MetricsTick, "metrics: duration between reports")
	fs.StringVar(&c.LogLevel, "log.level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.LogJSON, "log.json", c.LogJSON, "log as JSON")
	fs.Float64Var(&c.Rate, "rate", c.Rate, "actions per second allowed per connection")
	fs.IntVar(&c.Burst, "burst", c.Burst, "action burst allowed per connection")
	fs.DurationVar(&c.PingPeriod, "ping", c.PingPeriod, "websocket ping period")
}
