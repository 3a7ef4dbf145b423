// Package hidtest provides in-memory emulated HID devices for driver tests.
package hidtest

import (
	"sync"
	"time"

	"github.com/liquidctl/coolerctl/hiddev"
)

// Emulator implements hiddev.Device against a scriptable device-side handler.
//
// OnWrite receives every output report (report ID included) and returns the
// input reports the device queues in response. OnFeature, when set, receives
// feature reports; get-feature requests are answered from its return value.
// Drivers cannot tell an Emulator from real hardware.
type Emulator struct {
	DeviceInfo hiddev.Info

	// OnWrite handles an output report and returns queued input reports.
	OnWrite func(report []byte) [][]byte
	// OnFeature handles a feature report exchange. The argument is the
	// report sent by SendFeature, or just the report ID byte for GetFeature.
	OnFeature func(report []byte) []byte

	mu      sync.Mutex
	pending [][]byte
	writes  [][]byte
	closed  bool
}

func (e *Emulator) Write(report []byte) (int, error) {
	cp := append([]byte(nil), report...)
	e.mu.Lock()
	e.writes = append(e.writes, cp)
	e.mu.Unlock()
	if e.OnWrite != nil {
		replies := e.OnWrite(cp)
		e.mu.Lock()
		e.pending = append(e.pending, replies...)
		e.mu.Unlock()
	}
	return len(report), nil
}

// Read pops the next queued input report. An empty queue behaves like a
// hidapi read timeout: 0 bytes, no error.
func (e *Emulator) Read(buf []byte, timeout time.Duration) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return 0, nil
	}
	next := e.pending[0]
	e.pending = e.pending[1:]
	n := copy(buf, next)
	return n, nil
}

func (e *Emulator) SendFeature(report []byte) (int, error) {
	if e.OnFeature != nil {
		e.OnFeature(append([]byte(nil), report...))
	}
	return len(report), nil
}

func (e *Emulator) GetFeature(buf []byte) (int, error) {
	if e.OnFeature == nil {
		return 0, nil
	}
	out := e.OnFeature(buf[:1])
	return copy(buf, out), nil
}

func (e *Emulator) Info() hiddev.Info { return e.DeviceInfo }

func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (e *Emulator) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Writes returns copies of all output reports received so far.
func (e *Emulator) Writes() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.writes))
	copy(out, e.writes)
	return out
}

// QueueInput queues an unsolicited input report.
func (e *Emulator) QueueInput(report []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, append([]byte(nil), report...))
}
