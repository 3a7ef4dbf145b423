package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/internal/history"
)

type HistoryCmd struct {
	Since    time.Duration `help:"How far back to look" default:"24h"`
	Channel  string        `help:"Only samples from this channel"`
	Database string        `help:"History database path (defaults to the user data dir)"`
}

func (c *HistoryCmd) Run() error {
	ctx, stop := signalContext()
	defer stop()

	path := c.Database
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	samples, err := store.Query(ctx, time.Now().Add(-c.Since), c.Channel)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("no recorded samples; run coolerctl monitor --record first")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range samples {
		r := driver.Reading{Value: s.Value, Unit: s.Unit}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.TakenAt.Format(time.DateTime), s.Device, s.Channel, s.Label, r.String())
	}
	return w.Flush()
}
