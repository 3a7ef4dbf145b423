// Package cmd defines the coolerctl command tree.
package cmd

// LogOptions are the global logging flags.
type LogOptions struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"COOLERCTL_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"COOLERCTL_LOG_FILE"`
	RawFile string `help:"Write raw HID report traffic to this file"`
}

// CLI is the root of the command grammar.
type CLI struct {
	ConfigFile string     `help:"Load configuration from this file" env:"COOLERCTL_CONFIG"`
	Log        LogOptions `embed:"" prefix:"log."`

	List       ListCmd       `cmd:"" help:"List supported devices"`
	Initialize InitializeCmd `cmd:"" help:"Put devices in a known state and print their identity"`
	Status     StatusCmd     `cmd:"" help:"Read and print all sensors"`
	Set        SetCmd        `cmd:"" help:"Control a speed or lighting channel"`
	Monitor    MonitorCmd    `cmd:"" help:"Full-screen live sensor view"`
	History    HistoryCmd    `cmd:"" help:"Print recorded sensor samples"`
	Rules      RulesCmd      `cmd:"" help:"Generate the udev permission rules file"`
	Config     ConfigCommand `cmd:"" help:"Configuration helpers"`
}
