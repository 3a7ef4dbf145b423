package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/hiddev"
	"github.com/liquidctl/coolerctl/internal/log"
	"github.com/liquidctl/coolerctl/internal/render"
)

// deviceFilter is embedded by every command that talks to hardware.
type deviceFilter struct {
	Match string `help:"Only devices whose name contains this substring" short:"m"`
}

type attached struct {
	info hiddev.Info
	drv  driver.Driver
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openMatched enumerates supported vendor interfaces, probes a driver on
// each and filters by the match substring. The returned cleanup closes all
// drivers and releases hidapi.
func openMatched(logger *slog.Logger, traffic log.TrafficLogger, match string) ([]attached, func(), error) {
	if err := hiddev.Init(); err != nil {
		return nil, nil, err
	}

	infos, err := hiddev.Enumerate(func(info hiddev.Info) bool {
		return hiddev.VendorSpecific(info) && driver.Find(info) != nil
	})
	if err != nil {
		_ = hiddev.Exit()
		return nil, nil, err
	}

	var devices []attached
	for _, info := range infos {
		reg := driver.Find(info)
		dev, err := hiddev.Open(info, traffic)
		if err != nil {
			logger.Warn("cannot open device, check permissions (coolerctl rules)",
				"bus", info.Bus(), "error", err)
			continue
		}
		drv, err := reg.Probe(dev, logger)
		if err != nil {
			logger.Warn("probe failed", "driver", reg.Name, "bus", info.Bus(), "error", err)
			_ = dev.Close()
			continue
		}
		if match != "" && !strings.Contains(strings.ToLower(drv.Description()), strings.ToLower(match)) {
			_ = drv.Close()
			continue
		}
		devices = append(devices, attached{info: info, drv: drv})
	}

	cleanup := func() {
		for _, d := range devices {
			_ = d.drv.Close()
		}
		_ = hiddev.Exit()
	}
	if len(devices) == 0 {
		cleanup()
		if match != "" {
			return nil, nil, errors.New("no supported devices match " + strings.TrimSpace(match))
		}
		return nil, nil, errors.New("no supported devices found")
	}
	return devices, cleanup, nil
}

// pollStatuses reads every device's sensors, degrading per device instead of
// failing the whole poll.
func pollStatuses(ctx context.Context, logger *slog.Logger, devices []attached) ([]render.DeviceStatus, error) {
	var statuses []render.DeviceStatus
	var lastErr error
	for _, d := range devices {
		readings, err := d.drv.Status(ctx)
		if err != nil {
			logger.Warn("status read failed", "device", d.drv.Description(), "error", err)
			lastErr = err
			continue
		}
		statuses = append(statuses, render.DeviceStatus{
			Device:   d.drv.Description(),
			Bus:      d.info.Bus(),
			Readings: readings,
		})
	}
	if len(statuses) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return statuses, nil
}
