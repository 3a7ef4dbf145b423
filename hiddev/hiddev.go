// Package hiddev provides access to USB HID devices through hidapi.
//
// All report buffers follow the hidapi convention: the first byte is the
// report ID, 0 when the device does not use numbered reports.
package hiddev

import (
	"fmt"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/liquidctl/coolerctl/internal/log"
)

// Info describes an attached HID interface.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	SerialNumber string
	Manufacturer string
	Product      string
	UsagePage    uint16
	Usage        uint16
	Interface    int
}

// Bus returns a short human-readable bus identifier for listings.
func (i Info) Bus() string {
	return fmt.Sprintf("%04x:%04x", i.VendorID, i.ProductID)
}

// Device is the transport a driver talks through.
type Device interface {
	// Write sends an output report. The first byte is the report ID.
	Write(report []byte) (int, error)
	// Read reads an input report, waiting up to timeout. Returns 0 bytes
	// without error when the timeout expires.
	Read(buf []byte, timeout time.Duration) (int, error)
	// SendFeature sends a feature report. The first byte is the report ID.
	SendFeature(report []byte) (int, error)
	// GetFeature reads a feature report; buf[0] selects the report ID.
	GetFeature(buf []byte) (int, error)
	Info() Info
	Close() error
}

// Init initializes the hidapi library. Call once before Enumerate/Open.
func Init() error { return hid.Init() }

// Exit releases the hidapi library.
func Exit() error { return hid.Exit() }

// VendorSpecific reports whether the interface exposes a vendor-defined usage
// page. Composite devices also expose keyboard/mouse interfaces; drivers only
// ever want the vendor ones.
func VendorSpecific(info Info) bool {
	return info.UsagePage >= 0xff00
}

// Enumerate lists attached HID interfaces accepted by the filter. A nil
// filter accepts everything.
func Enumerate(filter func(Info) bool) ([]Info, error) {
	var found []Info
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(di *hid.DeviceInfo) error {
		info := Info{
			Path:         di.Path,
			VendorID:     di.VendorID,
			ProductID:    di.ProductID,
			SerialNumber: di.SerialNbr,
			Manufacturer: di.MfrStr,
			Product:      di.ProductStr,
			UsagePage:    di.UsagePage,
			Usage:        di.Usage,
			Interface:    di.InterfaceNbr,
		}
		if filter == nil || filter(info) {
			found = append(found, info)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hid enumeration failed: %w", err)
	}
	return found, nil
}

// Open opens the interface described by info. Traffic in both directions is
// mirrored to the traffic logger.
func Open(info Info, traffic log.TrafficLogger) (Device, error) {
	h, err := hid.OpenPath(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}
	if traffic == nil {
		traffic = log.NewTraffic(nil)
	}
	return &hidapiDevice{h: h, info: info, traffic: traffic}, nil
}

type hidapiDevice struct {
	h       *hid.Device
	info    Info
	traffic log.TrafficLogger
}

func (d *hidapiDevice) Write(report []byte) (int, error) {
	d.traffic.Log(true, report)
	return d.h.Write(report)
}

func (d *hidapiDevice) Read(buf []byte, timeout time.Duration) (int, error) {
	n, err := d.h.ReadWithTimeout(buf, timeout)
	if err != nil {
		return n, err
	}
	d.traffic.Log(false, buf[:n])
	return n, nil
}

func (d *hidapiDevice) SendFeature(report []byte) (int, error) {
	d.traffic.Log(true, report)
	return d.h.SendFeatureReport(report)
}

func (d *hidapiDevice) GetFeature(buf []byte) (int, error) {
	n, err := d.h.GetFeatureReport(buf)
	if err != nil {
		return n, err
	}
	d.traffic.Log(false, buf[:n])
	return n, nil
}

func (d *hidapiDevice) Info() Info { return d.info }

func (d *hidapiDevice) Close() error { return d.h.Close() }
