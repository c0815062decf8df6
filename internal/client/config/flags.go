package config

import (
	"flag"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     base URL of the backend server
//	-i duration   interval between server reachability probes (e.g., "3s")
//
// os.Args is pre-filtered with flagx.FilterArgs so flags owned by other
// stages (-c/-config) do not trip this flag set.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL to access server")
	fs.DurationVar(&cfg.OnlineCheckInterval, "i", cfg.OnlineCheckInterval, "online check interval")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
