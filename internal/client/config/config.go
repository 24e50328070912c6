package config

import "time"

// Config holds runtime settings for the gophshare CLI.
//
// Fields:
//   - ServerURL: base URL of the gophshare HTTP API.
//   - OnlineCheckInterval: how often the client pings the server.
//   - RequestTimeout: per-request HTTP timeout.
//   - LocalDBPath: SQLite file holding the saved session.
//   - DownloadDir: where downloaded files are written.
//   - LogBackend: "slog" or "zap"; logs go to LogFile.
//   - LogFile: destination of client logs; empty discards them.
//   - AllowResubmitAfterReject: must match the server's setting, otherwise
//     locally derived CanRequest flags disagree with the server's.
//
// Units: OnlineCheckInterval and RequestTimeout are time.Duration values.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LocalDBPath         string
	DownloadDir         string
	LogBackend          string
	LogFile             string

	AllowResubmitAfterReject bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LocalDBPath = "gophshare.db"
	c.DownloadDir = "downloads"
	c.LogBackend = "slog"
	c.LogFile = ""
	c.AllowResubmitAfterReject = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.normalize()
	return cfg
}

// normalize replaces unusable values with defaults. A non-positive online
// check interval would make the status watcher's ticker panic.
func (c *Config) normalize() {
	var d Config
	d.LoadDefaults()
	if c.OnlineCheckInterval <= 0 {
		c.OnlineCheckInterval = d.OnlineCheckInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
}
