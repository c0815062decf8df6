package config

import "time"

// Config holds the runtime settings of the InvoiceKeeper CLI.
type Config struct {
	// ServerEndpointAddr is the base URL of the backend HTTP API,
	// e.g. "http://127.0.0.1:8080".
	ServerEndpointAddr string

	// OnlineCheckInterval sets how often the client probes the server's
	// health endpoint to decide between online and offline mode.
	OnlineCheckInterval time.Duration
}

// LoadDefaults resets c to the compiled-in defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig assembles the effective configuration: defaults first, then the
// JSON file (when one is named on the command line), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
