package conf

import (
	"os"
)

const (
	configPathEnv     = "APP_CONFIG_PATH"
	defaultConfigPath = "conf/config.yml"
)

// Local is the whole local config file; each process reads its own section.
type Local struct {
	Gate    Gate
	Monitor Monitor
}

func Path() string {
	path := os.Getenv(configPathEnv)
	if path != "" {
		return path
	}
	return defaultConfigPath
}
