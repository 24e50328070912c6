// Package config loads runtime configuration for the gophshare CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the gophshare API
//	-i int      online status check interval (seconds)
//	-f string   path of the local SQLite database
//	-o string   download directory
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "online_check_interval": "3s",
//	  "request_timeout": "30s",
//	  "local_db_path": "gophshare.db",
//	  "download_dir": "downloads",
//	  "log_backend": "zap",
//	  "log_file": "client.log"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
