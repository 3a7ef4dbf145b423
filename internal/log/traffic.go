package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// TrafficLogger records raw HID report traffic with optional file output.
type TrafficLogger interface {
	Log(toDevice bool, data []byte)
}

// trafficLogger implements TrafficLogger with thread-safe output.
type trafficLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTraffic creates a new TrafficLogger. If writer is nil, returns a no-op logger.
func NewTraffic(w io.Writer) TrafficLogger {
	return &trafficLogger{w: w}
}

// Log emits a single-line report dump with timestamp and hex bytes.
// toDevice=true means host->device, toDevice=false means device->host.
func (t *trafficLogger) Log(toDevice bool, data []byte) {
	if len(data) == 0 {
		return
	}
	if t.w == nil {
		return
	}

	dir := "D->H"
	if toDevice {
		dir = "H->D"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s report: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		len(data),
		hexbuf.String())

	t.mu.Lock()
	_, _ = t.w.Write([]byte(line))
	t.mu.Unlock()
}
