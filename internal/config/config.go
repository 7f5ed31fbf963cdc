// Package config defines the deckctl command line surface for kong.
package config

import (
	"github.com/Alia5/streamdeck/internal/cmd"
)

// LogConfig groups the logging flags shared by every command.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"DECKCTL_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"DECKCTL_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every HID report to this file" env:"DECKCTL_LOG_RAW"`
}

// CLI is the root command. Values come from flags, environment variables and
// the JSON/YAML/TOML config files, in that priority order.
type CLI struct {
	Config string    `help:"Path to a config file" env:"DECKCTL_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	List       cmd.List          `cmd:"" help:"List attached devices"`
	Info       cmd.Info          `cmd:"" help:"Show device identity and capabilities"`
	Brightness cmd.Brightness    `cmd:"" help:"Set backlight brightness"`
	SetImage   cmd.SetImage      `cmd:"" name:"set-image" help:"Set a key image from an image file"`
	SetScreen  cmd.SetScreen     `cmd:"" name:"set-screen" help:"Set the touch strip image from an image file"`
	Clear      cmd.Clear         `cmd:"" help:"Clear one or all keys"`
	Reset      cmd.Reset         `cmd:"" help:"Reset the device to its logo screen"`
	Watch      cmd.Watch         `cmd:"" help:"Stream decoded input events"`
	ConfigCmd  cmd.ConfigCommand `cmd:"" name:"config" help:"Manage deckctl configuration"`
}
