// Package corsairpsu drives Corsair HXi and RMi power supplies, which expose
// their PMBus registers over a 64-byte HID report channel.
package corsairpsu

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/hiddev"
	"github.com/liquidctl/coolerctl/pmbus"
)

// Report channel framing. Reports are unnumbered (report ID 0x00): the body
// is [op, command, data...]. For reads op is the number of data bytes wanted;
// for writes op is writeFlag|len(data). Replies echo op and command, carry
// the data from byte 2 and append a PEC byte over everything before it.
const (
	reportLength    = 64
	responseTimeout = 500 * time.Millisecond

	writeFlag = 0x80
	blockLen  = 16
)

// Vendor-specific register codes alongside the standard pmbus ones.
const (
	cmdUptime      = 0xd1
	cmdTotalUptime = 0xd2
	cmdOCPMode     = 0xd8
	cmdTotalPower  = 0xee
	cmdFanMode     = 0xf0
)

const (
	ocpSingleRail = 0x01
	ocpMultiRail  = 0x02

	fanModeAuto   = 0x00
	fanModeManual = 0x01
)

const vendorCorsair = 0x1b1c

var models = map[driver.ProductID]string{
	{Vendor: vendorCorsair, Product: 0x1c03}: "Corsair HX550i",
	{Vendor: vendorCorsair, Product: 0x1c04}: "Corsair HX650i",
	{Vendor: vendorCorsair, Product: 0x1c05}: "Corsair HX750i",
	{Vendor: vendorCorsair, Product: 0x1c06}: "Corsair HX850i",
	{Vendor: vendorCorsair, Product: 0x1c07}: "Corsair HX1000i",
	{Vendor: vendorCorsair, Product: 0x1c08}: "Corsair HX1200i",
	{Vendor: vendorCorsair, Product: 0x1c09}: "Corsair RM550i",
	{Vendor: vendorCorsair, Product: 0x1c0a}: "Corsair RM650i",
	{Vendor: vendorCorsair, Product: 0x1c0b}: "Corsair RM750i",
	{Vendor: vendorCorsair, Product: 0x1c0c}: "Corsair RM850i",
	{Vendor: vendorCorsair, Product: 0x1c0d}: "Corsair RM1000i",
}

// rails are the output pages selected through the PMBus PAGE register.
var rails = []struct {
	page  byte
	name  string
	label string
}{
	{0, "12v", "+12V"},
	{1, "5v", "+5V"},
	{2, "3.3v", "+3.3V"},
}

func init() {
	match := make([]driver.ProductID, 0, len(models))
	for id := range models {
		match = append(match, id)
	}
	driver.Register(driver.Registration{
		Name:  "corsair-psu",
		Match: match,
		Probe: Probe,
	})
}

// PSU is a driver.Driver for a Corsair HXi/RMi power supply.
type PSU struct {
	dev    hiddev.Device
	logger *slog.Logger
	name   string
}

// Probe confirms the device answers PMBus reads before handing out a driver.
func Probe(dev hiddev.Device, logger *slog.Logger) (driver.Driver, error) {
	info := dev.Info()
	name, ok := models[driver.ProductID{Vendor: info.VendorID, Product: info.ProductID}]
	if !ok {
		return nil, fmt.Errorf("corsair-psu: unsupported device %04x:%04x", info.VendorID, info.ProductID)
	}
	p := &PSU{dev: dev, logger: logger, name: name}
	if _, err := p.readBlock(context.Background(), byte(pmbus.MfrID)); err != nil {
		return nil, fmt.Errorf("corsair-psu: probe failed: %w", err)
	}
	return p, nil
}

func (p *PSU) Description() string { return p.name }

func (p *PSU) Close() error { return p.dev.Close() }

// Initialize reports the PSU's identity registers.
func (p *PSU) Initialize(ctx context.Context) ([]driver.Reading, error) {
	mfr, err := p.readBlock(ctx, byte(pmbus.MfrID))
	if err != nil {
		return nil, err
	}
	model, err := p.readBlock(ctx, byte(pmbus.MfrModel))
	if err != nil {
		return nil, err
	}
	return []driver.Reading{
		{Channel: "mfr", Label: "Manufacturer", Text: mfr},
		{Channel: "model", Label: "Model", Text: model},
	}, nil
}

// Status reads the input/output sensors. A failed register read is logged
// and skipped so one flaky sensor does not take down the whole status.
func (p *PSU) Status(ctx context.Context) ([]driver.Reading, error) {
	var readings []driver.Reading

	add := func(channel, label string, cmd byte, unit driver.Unit) {
		v, err := p.readLinear11(ctx, cmd)
		if err != nil {
			p.logger.Warn("sensor read failed, skipping", "register", pmbus.Command(cmd).String(), "error", err)
			return
		}
		readings = append(readings, driver.Reading{Channel: channel, Label: label, Value: v, Unit: unit})
	}

	add("vin", "Input voltage", byte(pmbus.ReadVin), driver.UnitVolt)
	add("pin", "Input power", byte(pmbus.ReadPin), driver.UnitWatt)
	add("temp1", "Temperature 1", byte(pmbus.ReadTemperature1), driver.UnitCelsius)
	add("temp2", "Temperature 2", byte(pmbus.ReadTemperature2), driver.UnitCelsius)
	add("fan", "Fan speed", byte(pmbus.ReadFanSpeed1), driver.UnitRPM)

	for _, rail := range rails {
		if err := p.writeByte(ctx, byte(pmbus.Page), rail.page); err != nil {
			return nil, err
		}
		// Output voltage is LINEAR16 with the exponent in VOUT_MODE.
		if mode, err := p.readByte(ctx, byte(pmbus.VoutMode)); err != nil {
			p.logger.Warn("VOUT_MODE read failed, skipping rail voltage", "rail", rail.name, "error", err)
		} else if raw, err := p.readWord(ctx, byte(pmbus.ReadVout)); err != nil {
			p.logger.Warn("sensor read failed, skipping", "register", pmbus.ReadVout.String(), "error", err)
		} else {
			readings = append(readings, driver.Reading{
				Channel: rail.name, Label: rail.label + " output voltage",
				Value: pmbus.DecodeLinear16(raw, pmbus.VoutExponent(mode)), Unit: driver.UnitVolt,
			})
		}
		add(rail.name+".current", rail.label+" output current", byte(pmbus.ReadIout), driver.UnitAmp)
		add(rail.name+".power", rail.label+" output power", byte(pmbus.ReadPout), driver.UnitWatt)
	}
	if err := p.writeByte(ctx, byte(pmbus.Page), 0); err != nil {
		return nil, err
	}

	add("power", "Total output power", cmdTotalPower, driver.UnitWatt)

	if up, err := p.readU32(ctx, cmdUptime); err == nil {
		readings = append(readings, driver.Reading{Channel: "uptime", Label: "Uptime", Value: float64(up), Unit: driver.UnitSecond})
	}
	if up, err := p.readU32(ctx, cmdTotalUptime); err == nil {
		readings = append(readings, driver.Reading{Channel: "uptime.total", Label: "Total uptime", Value: float64(up), Unit: driver.UnitSecond})
	}

	return readings, nil
}

// SetFixedSpeed puts the fan in manual mode at the given duty. The only
// speed channel is "fan".
func (p *PSU) SetFixedSpeed(ctx context.Context, channel string, duty uint8) error {
	if channel != "fan" {
		return fmt.Errorf("%w: %q", driver.ErrUnsupportedChannel, channel)
	}
	if err := p.writeByte(ctx, cmdFanMode, fanModeManual); err != nil {
		return err
	}
	raw, err := pmbus.EncodeLinear11(float64(duty))
	if err != nil {
		return err
	}
	return p.writeWord(ctx, byte(pmbus.FanCommand1), raw)
}

// SetFanAuto returns fan control to the PSU's own curve.
func (p *PSU) SetFanAuto(ctx context.Context) error {
	return p.writeByte(ctx, cmdFanMode, fanModeAuto)
}

// SetOCPMode selects single or multi rail overcurrent protection.
func (p *PSU) SetOCPMode(ctx context.Context, multi bool) error {
	mode := byte(ocpSingleRail)
	if multi {
		mode = ocpMultiRail
	}
	return p.writeByte(ctx, cmdOCPMode, mode)
}

// SetColor is unsupported; PSUs have no lighting.
func (p *PSU) SetColor(ctx context.Context, channel, mode string, colors []driver.RGB) error {
	return fmt.Errorf("%w: %q", driver.ErrUnsupportedChannel, channel)
}

func (p *PSU) readLinear11(ctx context.Context, cmd byte) (float64, error) {
	raw, err := p.readWord(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return pmbus.DecodeLinear11(raw), nil
}

func (p *PSU) readWord(ctx context.Context, cmd byte) (uint16, error) {
	data, err := p.exchange(ctx, 2, cmd, nil)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func (p *PSU) readByte(ctx context.Context, cmd byte) (byte, error) {
	data, err := p.exchange(ctx, 1, cmd, nil)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (p *PSU) readU32(ctx context.Context, cmd byte) (uint32, error) {
	data, err := p.exchange(ctx, 4, cmd, nil)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (p *PSU) readBlock(ctx context.Context, cmd byte) (string, error) {
	data, err := p.exchange(ctx, blockLen, cmd, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\x00"), nil
}

func (p *PSU) writeByte(ctx context.Context, cmd byte, value byte) error {
	_, err := p.exchange(ctx, writeFlag|1, cmd, []byte{value})
	return err
}

func (p *PSU) writeWord(ctx context.Context, cmd byte, value uint16) error {
	_, err := p.exchange(ctx, writeFlag|2, cmd, binary.LittleEndian.AppendUint16(nil, value))
	return err
}

// exchange performs one request/reply cycle and verifies echo and PEC.
func (p *PSU) exchange(ctx context.Context, op byte, cmd byte, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, reportLength+1)
	buf[0] = 0x00 // report ID
	buf[1] = op
	buf[2] = cmd
	copy(buf[3:], data)
	if _, err := p.dev.Write(buf); err != nil {
		return nil, fmt.Errorf("corsair-psu: write failed: %w", err)
	}

	res := make([]byte, reportLength)
	n, err := p.dev.Read(res, responseTimeout)
	if err != nil {
		return nil, fmt.Errorf("corsair-psu: read failed: %w", err)
	}
	if n == 0 {
		return nil, driver.ErrNoResponse
	}
	if res[0] != op || res[1] != cmd {
		return nil, fmt.Errorf("corsair-psu: response %02x/%02x does not match request %02x/%02x",
			res[0], res[1], op, cmd)
	}

	dataLen := int(op &^ writeFlag)
	if op&writeFlag != 0 {
		dataLen = 0
	}
	if n < 2+dataLen+1 {
		return nil, fmt.Errorf("corsair-psu: short response (%d bytes)", n)
	}
	if pec := pmbus.PEC(res[:2+dataLen]); pec != res[2+dataLen] {
		return nil, fmt.Errorf("corsair-psu: bad PEC: computed %02x, received %02x", pec, res[2+dataLen])
	}
	return res[2 : 2+dataLen], nil
}
