package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophshare/internal/flagx"
	"github.com/dmitrijs2005/gophshare/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Only
// fields present in the file override the current values.
type JsonConfig struct {
	EndpointAddr                 string          `json:"endpoint_addr"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	PresignTTL                   *timex.Duration `json:"presign_ttl"`
	ShutdownTimeout              *timex.Duration `json:"shutdown_timeout"`
	LogBackend                   string          `json:"log_backend"`
	AllowResubmitAfterReject     *bool           `json:"allow_resubmit_after_reject"`
	CORSOrigins                  []string        `json:"cors_origins"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics, as the server cannot start with a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogBackend, c.LogBackend)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.PresignTTL != nil {
		config.PresignTTL = c.PresignTTL.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.AllowResubmitAfterReject != nil {
		config.AllowResubmitAfterReject = *c.AllowResubmitAfterReject
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
