package driver

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidctl/coolerctl/hiddev"
)

func TestReadingString(t *testing.T) {
	cases := []struct {
		name    string
		reading Reading
		want    string
	}{
		{"temperature", Reading{Value: 33.5, Unit: UnitCelsius}, "33.50 °C"},
		{"rpm has no decimals", Reading{Value: 1841, Unit: UnitRPM}, "1841 rpm"},
		{"percent", Reading{Value: 42, Unit: UnitPercent}, "42.00 %"},
		{"text wins", Reading{Value: 1, Unit: UnitVolt, Text: "2.10.219"}, "2.10.219"},
		{"unitless", Reading{Value: 0.5}, "0.50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.reading.String())
		})
	}
}

func TestClampDuty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	assert.Equal(t, uint8(55), ClampDuty(logger, "fan1", 55))
	assert.Empty(t, buf.String())

	assert.Equal(t, uint8(100), ClampDuty(logger, "fan1", 150))
	assert.Contains(t, buf.String(), "clamping")

	assert.Equal(t, uint8(0), ClampDuty(logger, "pump", -20))
}

func TestRegistryFind(t *testing.T) {
	Register(Registration{
		Name:  "test-fake",
		Match: []ProductID{{Vendor: 0x1234, Product: 0xabcd}},
	})

	found := Find(hiddev.Info{VendorID: 0x1234, ProductID: 0xabcd})
	require.NotNil(t, found)
	assert.Equal(t, "test-fake", found.Name)

	assert.Nil(t, Find(hiddev.Info{VendorID: 0x1234, ProductID: 0x0001}))

	all := All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Name, all[i].Name)
	}
}
