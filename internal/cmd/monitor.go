package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/liquidctl/coolerctl/internal/history"
	"github.com/liquidctl/coolerctl/internal/log"
	"github.com/liquidctl/coolerctl/internal/monitor"
	"github.com/liquidctl/coolerctl/internal/render"
)

type MonitorCmd struct {
	deviceFilter
	Interval time.Duration `help:"Poll interval" default:"2s"`
	Record   bool          `help:"Append every poll to the history database"`
	Database string        `help:"History database path (defaults to the user data dir)"`
}

func (c *MonitorCmd) Run(logger *slog.Logger, traffic log.TrafficLogger) error {
	devices, cleanup, err := openMatched(logger, traffic, c.Match)
	if err != nil {
		return err
	}
	defer cleanup()

	var record monitor.Recorder
	if c.Record {
		path := c.Database
		if path == "" {
			if path, err = history.DefaultPath(); err != nil {
				return err
			}
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		logger.Info("recording samples", "database", path)

		record = func(at time.Time, statuses []render.DeviceStatus) {
			for _, st := range statuses {
				if err := store.Append(context.Background(), st.Device, at, st.Readings); err != nil {
					logger.Warn("failed to record sample", "device", st.Device, "error", err)
				}
			}
		}
	}

	poll := func(ctx context.Context) ([]render.DeviceStatus, error) {
		return pollStatuses(ctx, logger, devices)
	}
	return monitor.Run(poll, record, c.Interval)
}
