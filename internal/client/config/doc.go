// Package config loads runtime configuration for the InvoiceKeeper CLI.
//
// Sources are applied in order, later ones winning:
//
//  1. compiled-in defaults
//  2. a JSON file named by -c or -config; fields absent from the file
//     keep their current values
//  3. command-line flags
//
// Flags:
//
//	-a string     base URL of the backend HTTP API
//	-i duration   interval between server reachability probes (e.g. "3s")
//	-c, -config   path to the JSON config file
//
// The JSON file mirrors the flag surface. Intervals unmarshal via
// timex.Duration, so both "3s" and integer nanoseconds are accepted:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s"
//	}
//
// Environment variables are not consulted.
package config
