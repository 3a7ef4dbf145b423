// Package render formats device listings and status tables for the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/hiddev"
)

// DeviceStatus pairs a device description with its readings.
type DeviceStatus struct {
	Device   string           `json:"device"`
	Bus      string           `json:"bus"`
	Readings []driver.Reading `json:"readings"`
}

var (
	deviceStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})
	treeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// StdoutIsTerminal reports whether stdout is a TTY; plain output is used
// otherwise so pipes get no ANSI sequences.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// List writes one line per detected device.
func List(w io.Writer, devices []string, infos []hiddev.Info, styled bool) {
	for i, name := range devices {
		line := fmt.Sprintf("Device #%d: %s", i, name)
		if styled {
			line = deviceStyle.Render(line)
		}
		fmt.Fprintln(w, line)
		if i < len(infos) {
			fmt.Fprintf(w, "  %s, address %s\n", infos[i].Bus(), infos[i].Path)
		}
	}
}

// Status writes reading tables grouped per device, in the two-column
// label/value layout with tree guides.
func Status(w io.Writer, statuses []DeviceStatus, styled bool) {
	for di, st := range statuses {
		header := st.Device
		if styled {
			header = deviceStyle.Render(header)
		}
		fmt.Fprintln(w, header)

		width := 0
		for _, r := range st.Readings {
			if len(r.Label) > width {
				width = len(r.Label)
			}
		}
		for i, r := range st.Readings {
			guide := "├──"
			if i == len(st.Readings)-1 {
				guide = "└──"
			}
			label := r.Label + strings.Repeat(" ", width-len(r.Label))
			if styled {
				guide = treeStyle.Render(guide)
				label = labelStyle.Render(label)
			}
			fmt.Fprintf(w, "%s %s  %s\n", guide, label, r.String())
		}
		if di < len(statuses)-1 {
			fmt.Fprintln(w)
		}
	}
}
