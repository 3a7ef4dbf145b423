package commandercore_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/driver/commandercore"
	"github.com/liquidctl/coolerctl/hiddev"
	"github.com/liquidctl/coolerctl/hiddev/hidtest"
)

const reportLength = 1024

// fakeCore emulates the device side of the Commander Core command channel.
type fakeCore struct {
	awake    bool
	openMode []byte

	speeds       []uint16 // rpm per channel
	temps        [][2]int // status, hundredths of °C
	modes        []byte   // speed mode per channel
	duties       []uint16 // duty*100 per channel
	lighting     []byte
	firmware     [3]byte
	badEcho      bool
	wrongType    bool
	shortReply   bool
	truncateData bool
}

func (f *fakeCore) reply(cmd, payload []byte) []byte {
	res := make([]byte, reportLength)
	copy(res, cmd)
	if f.badEcho {
		res[0] ^= 0xff
	}
	copy(res[2:], payload)
	if f.shortReply {
		// Echo plus at most two payload bytes, like a device that cuts the
		// transfer short.
		return res[:4]
	}
	if f.truncateData {
		// Enough for the data type tag and count byte, but fewer entries
		// than the count announces.
		return res[:7]
	}
	return res
}

func (f *fakeCore) handle(report []byte) [][]byte {
	// report[0] is the report ID, report[1] the host marker.
	cmd := report[2:4]
	args := report[4:]

	switch {
	case bytes.Equal(cmd, []byte{0x01, 0x03}): // wake/sleep
		f.awake = args[1] == 0x02
		return [][]byte{f.reply(cmd, nil)}
	case bytes.Equal(cmd, []byte{0x02, 0x13}): // firmware
		return [][]byte{f.reply(cmd, f.firmware[:])}
	case bytes.Equal(cmd, []byte{0x05, 0x01}): // reset
		return [][]byte{f.reply(cmd, nil)}
	case bytes.Equal(cmd, []byte{0x0d, 0x00}): // open mode
		f.openMode = trimZero(args)
		return [][]byte{f.reply(cmd, nil)}
	case bytes.Equal(cmd, []byte{0x05, 0x05}): // close mode
		f.openMode = nil
		return [][]byte{f.reply(cmd, nil)}
	case bytes.Equal(cmd, []byte{0x08, 0x00}): // read
		return [][]byte{f.reply(cmd, f.readBuffer())}
	case bytes.Equal(cmd, []byte{0x06, 0x00}): // write
		f.writeBuffer(args)
		return [][]byte{f.reply(cmd, nil)}
	}
	return nil
}

func (f *fakeCore) readBuffer() []byte {
	var out []byte
	switch {
	case bytes.Equal(f.openMode, []byte{0x17}): // speeds
		out = append(out, 0x06, 0x00, byte(len(f.speeds)))
		for _, rpm := range f.speeds {
			out = binary.LittleEndian.AppendUint16(out, rpm)
		}
	case bytes.Equal(f.openMode, []byte{0x21}): // temps
		out = append(out, 0x10, 0x00, byte(len(f.temps)))
		for _, t := range f.temps {
			out = append(out, byte(t[0]))
			out = binary.LittleEndian.AppendUint16(out, uint16(t[1]))
		}
	case bytes.Equal(f.openMode, []byte{0x60, 0x6d}): // speed modes
		out = append(out, 0x03, 0x00, byte(len(f.modes)))
		out = append(out, f.modes...)
	case bytes.Equal(f.openMode, []byte{0x61, 0x6d}): // fixed percents
		out = append(out, 0x04, 0x00, byte(len(f.duties)))
		for _, d := range f.duties {
			out = binary.LittleEndian.AppendUint16(out, d)
		}
	}
	if f.wrongType && len(out) >= 2 {
		out[0], out[1] = 0xde, 0xad
	}
	return out
}

func (f *fakeCore) writeBuffer(args []byte) {
	data := args[2:] // skip data type
	switch {
	case bytes.Equal(f.openMode, []byte{0x60, 0x6d}):
		count := int(data[0])
		copy(f.modes, data[1:1+count])
	case bytes.Equal(f.openMode, []byte{0x61, 0x6d}):
		count := int(data[0])
		for i := 0; i < count; i++ {
			f.duties[i] = binary.LittleEndian.Uint16(data[1+2*i:])
		}
	case bytes.Equal(f.openMode, []byte{0x22}):
		f.lighting = append([]byte(nil), data...)
	}
}

func trimZero(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

func newTestDriver(t *testing.T, f *fakeCore) driver.Driver {
	t.Helper()
	emu := &hidtest.Emulator{
		DeviceInfo: hiddev.Info{VendorID: 0x1b1c, ProductID: 0x0c1c, UsagePage: 0xff42},
		OnWrite:    f.handle,
	}
	d, err := commandercore.Probe(emu, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return d
}

func defaultFake() *fakeCore {
	return &fakeCore{
		firmware: [3]byte{2, 10, 219},
		speeds:   []uint16{2357, 1204, 0},
		temps:    [][2]int{{0x00, 2843}, {0x01, 0}},
		modes:    []byte{0x02, 0x02, 0x02},
		duties:   []uint16{7500, 5000, 2000},
	}
}

func TestInitialize(t *testing.T) {
	f := defaultFake()
	d := newTestDriver(t, f)

	readings, err := d.Initialize(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Firmware version", readings[0].Label)
	assert.Equal(t, "2.10.219", readings[0].String())
	assert.False(t, f.awake, "device must be released after the session")
}

func TestStatus(t *testing.T) {
	f := defaultFake()
	d := newTestDriver(t, f)

	readings, err := d.Status(context.Background())
	require.NoError(t, err)

	// Speed and duty readings share channel names, so key on unit too.
	byKey := map[string]driver.Reading{}
	for _, r := range readings {
		byKey[r.Channel+"/"+string(r.Unit)] = r
	}

	assert.Equal(t, 2357.0, byKey["pump/rpm"].Value)
	assert.Equal(t, 1204.0, byKey["fan1/rpm"].Value)
	assert.Equal(t, 0.0, byKey["fan2/rpm"].Value)

	// Sensor 0 is the water probe on pump-bearing units; sensor 1 is
	// unplugged and must be dropped, not reported as zero.
	assert.InDelta(t, 28.43, byKey["water/°C"].Value, 1e-9)
	_, hasTemp2 := byKey["temp2/°C"]
	assert.False(t, hasTemp2)

	assert.False(t, f.awake)
}

func TestStatusDutyReadings(t *testing.T) {
	f := defaultFake()
	d := newTestDriver(t, f)

	readings, err := d.Status(context.Background())
	require.NoError(t, err)

	var duties []driver.Reading
	for _, r := range readings {
		if r.Unit == driver.UnitPercent {
			duties = append(duties, r)
		}
	}
	require.Len(t, duties, 3)
	assert.Equal(t, 75.0, duties[0].Value)
	assert.Equal(t, 50.0, duties[1].Value)
	assert.Equal(t, 20.0, duties[2].Value)
}

func TestSetFixedSpeed(t *testing.T) {
	f := defaultFake()
	d := newTestDriver(t, f)

	err := d.SetFixedSpeed(context.Background(), "fan1", 42)
	require.NoError(t, err)

	assert.Equal(t, byte(0x00), f.modes[1], "fan1 must be switched to fixed percent mode")
	assert.Equal(t, byte(0x02), f.modes[0], "pump mode must be untouched")
	assert.Equal(t, uint16(4200), f.duties[1])
	assert.Equal(t, uint16(7500), f.duties[0])
	assert.False(t, f.awake)
}

func TestSetFixedSpeedUnknownChannel(t *testing.T) {
	d := newTestDriver(t, defaultFake())

	err := d.SetFixedSpeed(context.Background(), "fan9", 50)
	assert.ErrorIs(t, err, driver.ErrUnsupportedChannel)
}

func TestSetColorFixed(t *testing.T) {
	f := defaultFake()
	d := newTestDriver(t, f)

	err := d.SetColor(context.Background(), "led", "fixed", []driver.RGB{{R: 0xff, G: 0x00, B: 0x80}})
	require.NoError(t, err)
	require.NotEmpty(t, f.lighting)
	assert.Equal(t, []byte{0xff, 0x00, 0x80}, f.lighting[:3])

	err = d.SetColor(context.Background(), "led", "rainbow", nil)
	assert.ErrorIs(t, err, driver.ErrUnsupportedMode)
}

func TestResponseValidation(t *testing.T) {
	f := defaultFake()
	f.badEcho = true
	d := newTestDriver(t, f)

	_, err := d.Status(context.Background())
	assert.ErrorContains(t, err, "does not match command")
}

func TestDataTypeValidation(t *testing.T) {
	f := defaultFake()
	f.wrongType = true
	d := newTestDriver(t, f)

	_, err := d.Status(context.Background())
	assert.ErrorContains(t, err, "expected data type")
}

func TestShortDataResponse(t *testing.T) {
	f := defaultFake()
	f.shortReply = true
	d := newTestDriver(t, f)

	_, err := d.Status(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "short data response")
}

func TestShortFirmwareResponse(t *testing.T) {
	f := defaultFake()
	f.shortReply = true
	d := newTestDriver(t, f)

	_, err := d.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "short firmware response")
}

func TestSetFixedSpeedTruncatedModes(t *testing.T) {
	f := defaultFake()
	f.truncateData = true
	d := newTestDriver(t, f)

	err := d.SetFixedSpeed(context.Background(), "fan1", 42)
	require.Error(t, err)
	assert.ErrorContains(t, err, "truncated")
}

func TestNoResponse(t *testing.T) {
	emu := &hidtest.Emulator{
		DeviceInfo: hiddev.Info{VendorID: 0x1b1c, ProductID: 0x0c1c},
	}
	d, err := commandercore.Probe(emu, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = d.Initialize(context.Background())
	assert.ErrorIs(t, err, driver.ErrNoResponse)
}

func TestCancelledContext(t *testing.T) {
	d := newTestDriver(t, defaultFake())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
