package main

import (
	"io"
	"os"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

type metrics struct {
	log  io.Writer
	reg  gometrics.Registry
	tick time.Duration
	stop chan struct{}
}

var m = newMetrics(os.Stderr, gometrics.NewRegistry())

func newMetrics(w io.Writer, reg gometrics.Registry) *metrics {
	return &metrics{
		log:  w,
		reg:  reg,
		tick: 60 * time.Second,
	}
}

func startMetrics(tick time.Duration) {
	if tick > 0 {
		m.tick = tick
	}
	m.start()
}

func finalMetrics() {
	m.writeOnce(m.log)
}

func incr(name string, i int64) {
	m.incr(name, i)
}

func decr(name string, i int64) {
	m.decr(name, i)
}

func mark(name string, i int64) {
	m.mark(name, i)
}

func (m *metrics) start() {
	m.stop = make(chan struct{})
	go func() {
		t := time.NewTicker(m.tick)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.writeOnce(m.log)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *metrics) halt() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

func (m *metrics) writeOnce(w io.Writer) {
	gometrics.WriteJSONOnce(m.reg, w)
}

func (m *metrics) incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Inc(i)
}

func (m *metrics) decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, m.reg).Dec(i)
}

func (m *metrics) mark(name string, i int64) {
	gometrics.GetOrRegisterMeter(name, m.reg).Mark(i)
}

func (m *metrics) count(name string) int64 {
	if c, ok := m.reg.Get(name).(gometrics.Counter); ok {
		return c.Count()
	}
	if mt, ok := m.reg.Get(name).(gometrics.Meter); ok {
		return mt.Count()
	}
	return 0
}
