// Package commandercore drives Corsair Commander Core and Commander Core XT
// fan/pump controllers.
package commandercore

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/hiddev"
)

const responseTimeout = 500 * time.Millisecond

type variant struct {
	name         string
	reportLength int
	hasPump      bool
	fanCount     int
}

var variants = map[driver.ProductID]variant{
	{Vendor: vendorCorsair, Product: 0x0c1c}: {"Corsair Commander Core", reportLengthCore, true, 6},
	{Vendor: vendorCorsair, Product: 0x0c2a}: {"Corsair Commander Core XT", reportLengthXT, false, 6},
}

func init() {
	match := make([]driver.ProductID, 0, len(variants))
	for id := range variants {
		match = append(match, id)
	}
	driver.Register(driver.Registration{
		Name:  "commander-core",
		Match: match,
		Probe: Probe,
	})
}

// CommanderCore is a driver.Driver for a Commander Core controller.
type CommanderCore struct {
	dev    hiddev.Device
	logger *slog.Logger
	v      variant
}

// Probe builds the driver for an opened Commander Core interface.
func Probe(dev hiddev.Device, logger *slog.Logger) (driver.Driver, error) {
	info := dev.Info()
	v, ok := variants[driver.ProductID{Vendor: info.VendorID, Product: info.ProductID}]
	if !ok {
		return nil, fmt.Errorf("commander-core: unsupported device %04x:%04x", info.VendorID, info.ProductID)
	}
	return &CommanderCore{dev: dev, logger: logger, v: v}, nil
}

func (cc *CommanderCore) Description() string { return cc.v.name }

func (cc *CommanderCore) Close() error { return cc.dev.Close() }

// Initialize wakes the device, resets every mode channel and reports the
// firmware version.
func (cc *CommanderCore) Initialize(ctx context.Context) ([]driver.Reading, error) {
	if err := cc.wake(ctx); err != nil {
		return nil, err
	}
	defer cc.sleep()

	res, err := cc.sendCommand(ctx, cmdGetFirmware, nil)
	if err != nil {
		return nil, err
	}
	if len(res) < 5 {
		return nil, fmt.Errorf("commander-core: short firmware response (%d bytes)", len(res))
	}
	firmware := fmt.Sprintf("%d.%d.%d", res[2], res[3], res[4])

	if _, err := cc.sendCommand(ctx, cmdReset, argReset); err != nil {
		return nil, err
	}

	return []driver.Reading{
		{Channel: "firmware", Label: "Firmware version", Text: firmware},
	}, nil
}

// Status reads fan/pump speeds, temperatures and the configured fixed duties.
func (cc *CommanderCore) Status(ctx context.Context) ([]driver.Reading, error) {
	if err := cc.wake(ctx); err != nil {
		return nil, err
	}
	defer cc.sleep()

	var readings []driver.Reading

	speeds, err := cc.readData(ctx, modeGetSpeeds, dataTypeSpeeds, 1)
	if err != nil {
		return nil, err
	}
	readings = append(readings, cc.decodeSpeeds(speeds)...)

	temps, err := cc.readData(ctx, modeGetTemps, dataTypeTemps, 1)
	if err != nil {
		return nil, err
	}
	readings = append(readings, cc.decodeTemps(temps)...)

	duties, err := cc.readData(ctx, modeHwFixedPercent, dataTypeFixedPercent, 1)
	if err != nil {
		return nil, err
	}
	readings = append(readings, cc.decodeDuties(duties)...)

	return readings, nil
}

// SetFixedSpeed switches the channel to fixed-percent control and writes the
// duty into the hardware fixed-percent buffer.
func (cc *CommanderCore) SetFixedSpeed(ctx context.Context, channel string, duty uint8) error {
	idx, err := cc.channelIndex(channel)
	if err != nil {
		return err
	}
	if err := cc.wake(ctx); err != nil {
		return err
	}
	defer cc.sleep()

	// Switch the channel to fixed-percent mode, keeping the others as-is.
	modes, err := cc.readData(ctx, modeHwSpeedMode, dataTypeSpeedMode, 1)
	if err != nil {
		return err
	}
	modeCount := int(modes[0])
	if len(modes) < 1+modeCount {
		return fmt.Errorf("commander-core: speed mode data truncated (%d of %d entries)", len(modes)-1, modeCount)
	}
	if modeCount <= idx {
		return fmt.Errorf("commander-core: channel %q not present on this unit", channel)
	}
	modes[1+idx] = speedModeFixedPercent
	if err := cc.writeData(ctx, modeHwSpeedMode, dataTypeSpeedMode, modes[:1+modeCount]); err != nil {
		return err
	}

	duties, err := cc.readData(ctx, modeHwFixedPercent, dataTypeFixedPercent, 1)
	if err != nil {
		return err
	}
	dutyCount := int(duties[0])
	if len(duties) < 1+2*dutyCount {
		return fmt.Errorf("commander-core: fixed percent data truncated (%d bytes for %d entries)", len(duties)-1, dutyCount)
	}
	if dutyCount <= idx {
		return fmt.Errorf("commander-core: channel %q not present on this unit", channel)
	}
	binary.LittleEndian.PutUint16(duties[1+2*idx:], uint16(duty)*100)
	return cc.writeData(ctx, modeHwFixedPercent, dataTypeFixedPercent, duties[:1+2*dutyCount])
}

// SetColor writes a direct lighting buffer. Only the fixed and off modes are
// implemented; effects run in hardware only through vendor software.
func (cc *CommanderCore) SetColor(ctx context.Context, channel, mode string, colors []driver.RGB) error {
	if channel != "led" && channel != "sync" {
		return fmt.Errorf("%w: %q", driver.ErrUnsupportedChannel, channel)
	}
	var c driver.RGB
	switch mode {
	case "off":
	case "fixed":
		if len(colors) == 0 {
			return fmt.Errorf("commander-core: fixed mode needs a color")
		}
		c = colors[0]
	default:
		return fmt.Errorf("%w: %q", driver.ErrUnsupportedMode, mode)
	}

	if err := cc.wake(ctx); err != nil {
		return err
	}
	defer cc.sleep()

	// One RGB triplet per LED, every LED set to the same color.
	ledCount := (cc.v.reportLength - 8) / 3
	buf := make([]byte, ledCount*3)
	for i := 0; i < ledCount; i++ {
		buf[3*i+0] = c.R
		buf[3*i+1] = c.G
		buf[3*i+2] = c.B
	}
	return cc.writeData(ctx, modeLighting, dataTypeLighting, buf)
}

func (cc *CommanderCore) speedChannels() []string {
	names := make([]string, 0, cc.v.fanCount+1)
	if cc.v.hasPump {
		names = append(names, "pump")
	}
	for i := 1; i <= cc.v.fanCount; i++ {
		names = append(names, fmt.Sprintf("fan%d", i))
	}
	return names
}

func (cc *CommanderCore) channelIndex(channel string) (int, error) {
	for i, name := range cc.speedChannels() {
		if name == channel {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", driver.ErrUnsupportedChannel, channel)
}

func (cc *CommanderCore) decodeSpeeds(data []byte) []driver.Reading {
	count := int(data[0])
	names := cc.speedChannels()
	var out []driver.Reading
	for i := 0; i < count && 1+2*i+2 <= len(data); i++ {
		if i >= len(names) {
			break
		}
		rpm := binary.LittleEndian.Uint16(data[1+2*i:])
		label := "Fan speed " + names[i]
		if names[i] == "pump" {
			label = "Pump speed"
		}
		out = append(out, driver.Reading{
			Channel: names[i],
			Label:   label,
			Value:   float64(rpm),
			Unit:    driver.UnitRPM,
		})
	}
	return out
}

func (cc *CommanderCore) decodeTemps(data []byte) []driver.Reading {
	count := int(data[0])
	var out []driver.Reading
	for i := 0; i < count && 1+3*i+3 <= len(data); i++ {
		status := data[1+3*i]
		if status != tempConnected {
			cc.logger.Debug("temp sensor not connected", "sensor", i)
			continue
		}
		raw := int16(binary.LittleEndian.Uint16(data[1+3*i+1:]))
		channel := fmt.Sprintf("temp%d", i+1)
		label := fmt.Sprintf("Temp sensor %d", i+1)
		if cc.v.hasPump && i == 0 {
			channel = "water"
			label = "Water temperature"
		}
		out = append(out, driver.Reading{
			Channel: channel,
			Label:   label,
			Value:   float64(raw) / 100,
			Unit:    driver.UnitCelsius,
		})
	}
	return out
}

func (cc *CommanderCore) decodeDuties(data []byte) []driver.Reading {
	count := int(data[0])
	names := cc.speedChannels()
	var out []driver.Reading
	for i := 0; i < count && 1+2*i+2 <= len(data); i++ {
		if i >= len(names) {
			break
		}
		duty := binary.LittleEndian.Uint16(data[1+2*i:])
		out = append(out, driver.Reading{
			Channel: names[i],
			Label:   "Duty " + names[i],
			Value:   float64(duty) / 100,
			Unit:    driver.UnitPercent,
		})
	}
	return out
}

func (cc *CommanderCore) wake(ctx context.Context) error {
	_, err := cc.sendCommand(ctx, cmdWake, argWake)
	return err
}

func (cc *CommanderCore) sleep() {
	// Best effort: the controller falls back to hardware control on its own
	// if the sleep command is lost.
	if _, err := cc.sendCommand(context.Background(), cmdSleep, argSleep); err != nil {
		cc.logger.Warn("failed to release command channel", "error", err)
	}
}

// readData opens a mode, reads its tagged buffer and closes the mode again.
// The payload must carry at least min bytes after the data type tag.
func (cc *CommanderCore) readData(ctx context.Context, mode []byte, dataType [2]byte, min int) ([]byte, error) {
	if _, err := cc.sendCommand(ctx, cmdOpenMode, mode); err != nil {
		return nil, err
	}
	defer cc.closeMode()

	res, err := cc.sendCommand(ctx, cmdRead, nil)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(res[2:4], dataType[:]) {
		return nil, fmt.Errorf("commander-core: expected data type %02x%02x, got %02x%02x",
			dataType[0], dataType[1], res[2], res[3])
	}
	if len(res)-4 < min {
		return nil, fmt.Errorf("commander-core: short data response (%d payload bytes)", len(res)-4)
	}
	return res[4:], nil
}

// writeData opens a mode, writes its tagged buffer and closes the mode.
func (cc *CommanderCore) writeData(ctx context.Context, mode []byte, dataType [2]byte, data []byte) error {
	if _, err := cc.sendCommand(ctx, cmdOpenMode, mode); err != nil {
		return err
	}
	defer cc.closeMode()

	payload := make([]byte, 2+len(data))
	copy(payload, dataType[:])
	copy(payload[2:], data)
	_, err := cc.sendCommand(ctx, cmdWrite, payload)
	return err
}

func (cc *CommanderCore) closeMode() {
	if _, err := cc.sendCommand(context.Background(), cmdCloseMode, nil); err != nil {
		cc.logger.Warn("failed to close mode", "error", err)
	}
}

// sendCommand performs one report exchange and verifies the command echo.
func (cc *CommanderCore) sendCommand(ctx context.Context, cmd [2]byte, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, cc.v.reportLength+1)
	buf[0] = 0x00 // report ID
	buf[1] = hostMarker
	buf[2] = cmd[0]
	buf[3] = cmd[1]
	if len(args) > len(buf)-4 {
		return nil, fmt.Errorf("commander-core: command args too long (%d bytes)", len(args))
	}
	copy(buf[4:], args)

	if _, err := cc.dev.Write(buf); err != nil {
		return nil, fmt.Errorf("commander-core: write failed: %w", err)
	}

	res := make([]byte, cc.v.reportLength)
	n, err := cc.dev.Read(res, responseTimeout)
	if err != nil {
		return nil, fmt.Errorf("commander-core: read failed: %w", err)
	}
	if n == 0 {
		return nil, driver.ErrNoResponse
	}
	if n < 4 {
		return nil, fmt.Errorf("commander-core: short response (%d bytes)", n)
	}
	if res[0] != cmd[0] || res[1] != cmd[1] {
		return nil, fmt.Errorf("commander-core: response %02x%02x does not match command %02x%02x",
			res[0], res[1], cmd[0], cmd[1])
	}
	return res[:n], nil
}
