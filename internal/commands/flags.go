package commands

import (
	"InpaintBoard/internal/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Endpoint and Token override the config file when set.
	Endpoint string
	Token    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}
