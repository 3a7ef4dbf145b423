package cmd

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/liquidctl/coolerctl/internal/log"
	"github.com/liquidctl/coolerctl/internal/render"
)

type StatusCmd struct {
	deviceFilter
	JSON bool `help:"Print machine-readable JSON instead of a table"`
}

func (c *StatusCmd) Run(logger *slog.Logger, traffic log.TrafficLogger) error {
	ctx, stop := signalContext()
	defer stop()

	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	statuses, err := pollStatuses(ctx, logger, devices)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}
	render.Status(os.Stdout, statuses, render.StdoutIsTerminal())
	return nil
}
