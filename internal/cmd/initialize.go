package cmd

import (
	"log/slog"
	"os"

	"github.com/liquidctl/coolerctl/internal/log"
	"github.com/liquidctl/coolerctl/internal/render"
)

type InitializeCmd struct {
	deviceFilter
}

func (c *InitializeCmd) Run(logger *slog.Logger, traffic log.TrafficLogger) error {
	ctx, stop := signalContext()
	defer stop()

	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	var statuses []render.DeviceStatus
	for _, d := range devices {
		readings, err := d.drv.Initialize(ctx)
		if err != nil {
			return err
		}
		statuses = append(statuses, render.DeviceStatus{
			Device:   d.drv.Description(),
			Bus:      d.info.Bus(),
			Readings: readings,
		})
	}
	render.Status(os.Stdout, statuses, render.StdoutIsTerminal())
	return nil
}
