package driver

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/liquidctl/coolerctl/hiddev"
)

// ProductID identifies a supported device by USB vendor and product ID.
type ProductID struct {
	Vendor  uint16
	Product uint16
}

// Registration describes a driver: the IDs it matches and how to probe it.
// Driver packages register themselves from init().
type Registration struct {
	// Name is the driver's short name, e.g. "commander-core".
	Name string
	// Match lists the VID/PID pairs this driver supports.
	Match []ProductID
	// Probe builds a driver on an opened device. It should verify the
	// device actually speaks the protocol and fail otherwise.
	Probe func(dev hiddev.Device, logger *slog.Logger) (Driver, error)
}

// Matches reports whether the registration supports the given interface.
func (r Registration) Matches(info hiddev.Info) bool {
	for _, id := range r.Match {
		if id.Vendor == info.VendorID && id.Product == info.ProductID {
			return true
		}
	}
	return false
}

var (
	registry   = make(map[string]Registration)
	registryMu sync.RWMutex
)

// Register adds a driver registration. Called from driver package init().
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Name] = reg
}

// Find returns the registration matching an interface, or nil.
func Find(info hiddev.Info) *Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, reg := range registry {
		if reg.Matches(info) {
			r := reg
			return &r
		}
	}
	return nil
}

// All returns every registration, sorted by name.
func All() []Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Registration, 0, len(registry))
	for _, reg := range registry {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
