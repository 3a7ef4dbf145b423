package cmd

import (
	"log/slog"
	"os"

	"github.com/liquidctl/coolerctl/hiddev"
	"github.com/liquidctl/coolerctl/internal/log"
	"github.com/liquidctl/coolerctl/internal/render"
)

type ListCmd struct {
	deviceFilter
}

func (c *ListCmd) Run(logger *slog.Logger, traffic log.TrafficLogger) error {
	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	names := make([]string, len(devices))
	infos := make([]hiddev.Info, len(devices))
	for i, d := range devices {
		names[i] = d.drv.Description()
		infos[i] = d.info
	}
	render.List(os.Stdout, names, infos, render.StdoutIsTerminal())
	return nil
}
