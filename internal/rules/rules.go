// Package rules generates the udev rules file that grants unprivileged
// access to every device the driver registry knows about.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liquidctl/coolerctl/driver"
)

const header = `# Device permission rules for coolerctl.
#
# Generated by "coolerctl rules". Install to /etc/udev/rules.d/ and reload
# with "udevadm control --reload && udevadm trigger".
`

// Generate renders the rules text for the given registrations. Output is
// deterministic: entries are sorted by vendor, product, driver name.
func Generate(regs []driver.Registration) string {
	type entry struct {
		id   driver.ProductID
		name string
	}
	var entries []entry
	for _, reg := range regs {
		for _, id := range reg.Match {
			entries = append(entries, entry{id: id, name: reg.Name})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.id.Vendor != b.id.Vendor {
			return a.id.Vendor < b.id.Vendor
		}
		if a.id.Product != b.id.Product {
			return a.id.Product < b.id.Product
		}
		return a.name < b.name
	})

	var sb strings.Builder
	sb.WriteString(header)
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n# %s\n", e.name)
		fmt.Fprintf(&sb, "SUBSYSTEMS==\"usb\", ATTRS{idVendor}==\"%04x\", ATTRS{idProduct}==\"%04x\", TAG+=\"uaccess\"\n",
			e.id.Vendor, e.id.Product)
		fmt.Fprintf(&sb, "KERNEL==\"hidraw*\", ATTRS{idVendor}==\"%04x\", ATTRS{idProduct}==\"%04x\", TAG+=\"uaccess\"\n",
			e.id.Vendor, e.id.Product)
	}
	return sb.String()
}
