package config

import (
	"encoding/json"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/flagx"
	"github.com/dbelyakov/invoicekeeper/internal/timex"
)

// jsonConfig mirrors the server config file. Pointer fields let the overlay
// distinguish "absent from the file" from a zero value, so a file that sets
// only the DSN does not wipe the defaults of everything else. Durations
// accept "15m" strings as well as integer nanoseconds via timex.Duration.
type jsonConfig struct {
	EndpointAddr                 *string         `json:"endpoint_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. No flag means no file and no changes. A file that exists
// but cannot be read or parsed panics: a broken config file is a deployment
// mistake, not a condition to serve through.
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

	if jc.EndpointAddr != nil {
		cfg.EndpointAddr = *jc.EndpointAddr
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.SecretKey != nil {
		cfg.SecretKey = *jc.SecretKey
	}
	if jc.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration != nil {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
	if jc.S3RootUser != nil {
		cfg.S3RootUser = *jc.S3RootUser
	}
	if jc.S3RootPassword != nil {
		cfg.S3RootPassword = *jc.S3RootPassword
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
}
