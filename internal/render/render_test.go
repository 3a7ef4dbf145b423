package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/hiddev"
)

func TestStatusPlain(t *testing.T) {
	var buf bytes.Buffer
	Status(&buf, []DeviceStatus{
		{
			Device: "Corsair Commander Core",
			Readings: []driver.Reading{
				{Label: "Pump speed", Value: 2357, Unit: driver.UnitRPM},
				{Label: "Water temperature", Value: 28.43, Unit: driver.UnitCelsius},
			},
		},
	}, false)

	out := buf.String()
	assert.Contains(t, out, "Corsair Commander Core")
	assert.Contains(t, out, "├── Pump speed         2357 rpm")
	assert.Contains(t, out, "└── Water temperature  28.43 °C")
	assert.NotContains(t, out, "\x1b[", "plain output must carry no ANSI sequences")
}

func TestListPlain(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, []string{"Corsair RM750i"}, []hiddev.Info{
		{VendorID: 0x1b1c, ProductID: 0x1c0b, Path: "/dev/hidraw3"},
	}, false)

	out := buf.String()
	assert.Contains(t, out, "Device #0: Corsair RM750i")
	assert.Contains(t, out, "1b1c:1c0b")
	assert.Contains(t, out, "/dev/hidraw3")
}
