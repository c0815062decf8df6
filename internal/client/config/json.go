package config

import (
	"encoding/json"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/flagx"
	"github.com/dbelyakov/invoicekeeper/internal/timex"
)

// jsonConfig mirrors the config file. Every field is a pointer so the
// overlay can tell "absent from the file" apart from a zero value: absent
// fields keep whatever an earlier stage set. Durations accept "3s" strings
// as well as integer nanoseconds via timex.Duration.
type jsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. No flag means no file and no changes. A file that
// exists but cannot be read or parsed panics: that is a deployment
// mistake, not a condition to run through.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
