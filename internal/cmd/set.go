package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/internal/log"
)

type SetCmd struct {
	Channel SetChannelArg `arg:""`
}

// SetChannelArg captures the channel name and branches to the speed/color
// subcommands: coolerctl set <channel> speed <duty>.
type SetChannelArg struct {
	Channel string `arg:"" help:"Channel name (e.g. pump, fan1, led)"`

	Speed SetSpeedCmd `cmd:"" help:"Set a fixed duty cycle percent"`
	Color SetColorCmd `cmd:"" help:"Apply a lighting mode"`
}

type SetSpeedCmd struct {
	deviceFilter
	Duty int `arg:"" help:"Duty cycle percent (0-100, out-of-range values are clamped)"`
}

func (c *SetSpeedCmd) Run(parent *SetChannelArg, logger *slog.Logger, traffic log.TrafficLogger) error {
	ctx, stop := signalContext()
	defer stop()

	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	duty := driver.ClampDuty(logger, parent.Channel, c.Duty)
	for _, d := range devices {
		if err := d.drv.SetFixedSpeed(ctx, parent.Channel, duty); err != nil {
			return fmt.Errorf("%s: %w", d.drv.Description(), err)
		}
		logger.Info("fixed speed set", "device", d.drv.Description(), "channel", parent.Channel, "duty", duty)
	}
	return nil
}

type SetColorCmd struct {
	deviceFilter
	Mode   string   `arg:"" help:"Lighting mode (fixed, off)"`
	Colors []string `arg:"" optional:"" help:"Colors in hex (e.g. ff0030)"`
}

func (c *SetColorCmd) Run(parent *SetChannelArg, logger *slog.Logger, traffic log.TrafficLogger) error {
	ctx, stop := signalContext()
	defer stop()

	colors, err := parseColors(c.Colors)
	if err != nil {
		return err
	}

	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, d := range devices {
		if err := d.drv.SetColor(ctx, parent.Channel, c.Mode, colors); err != nil {
			return fmt.Errorf("%s: %w", d.drv.Description(), err)
		}
		logger.Info("lighting set", "device", d.drv.Description(), "channel", parent.Channel, "mode", c.Mode)
	}
	return nil
}

// parseColors converts hex color arguments ("ff0030", "#ff0030") to RGB.
func parseColors(args []string) ([]driver.RGB, error) {
	var out []driver.RGB
	for _, arg := range args {
		s := strings.TrimPrefix(arg, "#")
		if len(s) != 6 {
			return nil, fmt.Errorf("invalid color %q: want 6 hex digits", arg)
		}
		var c driver.RGB
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return nil, fmt.Errorf("invalid color %q: %w", arg, err)
		}
		out = append(out, c)
	}
	return out, nil
}
