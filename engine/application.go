package engine

type ApplicationConfig struct {
	// Path of the TOML configuration file. Empty runs on the defaults.
	ConfigPath string
	// Reload the configuration file when it changes on disk.
	WatchConfig bool
}
