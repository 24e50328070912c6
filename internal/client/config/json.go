package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophshare/internal/flagx"
	"github.com/dmitrijs2005/gophshare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Only fields present in the
// file are copied into the runtime Config.
type JsonConfig struct {
	ServerURL           string          `json:"server_url"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	LocalDBPath         string          `json:"local_db_path"`
	DownloadDir         string          `json:"download_dir"`
	LogBackend          string          `json:"log_backend"`
	LogFile             string          `json:"log_file"`

	AllowResubmitAfterReject *bool `json:"allow_resubmit_after_reject"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from -c or -config via flagx.JsonConfigFlags(); if no
// flag is given nothing is loaded. Read or unmarshal errors panic.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.DownloadDir != "" {
		cfg.DownloadDir = jc.DownloadDir
	}
	if jc.LogBackend != "" {
		cfg.LogBackend = jc.LogBackend
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.AllowResubmitAfterReject != nil {
		cfg.AllowResubmitAfterReject = *jc.AllowResubmitAfterReject
	}
}
