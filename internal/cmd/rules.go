package cmd

import (
	"fmt"
	"os"

	"github.com/liquidctl/coolerctl/driver"
	"github.com/liquidctl/coolerctl/internal/configpaths"
	"github.com/liquidctl/coolerctl/internal/rules"
)

type RulesCmd struct {
	Output string `help:"Write the rules to this file instead of stdout" short:"o"`
}

func (c *RulesCmd) Run() error {
	text := rules.Generate(driver.All())
	if c.Output == "" {
		fmt.Print(text)
		return nil
	}
	if err := configpaths.EnsureDir(c.Output); err != nil {
		return err
	}
	return os.WriteFile(c.Output, []byte(text), 0o644)
}
