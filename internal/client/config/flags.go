package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the server API (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-f string   local database file
//	-o string   download directory
//	-x bool     allow resubmitting a rejected request; must match the server
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-f", "-o", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server API")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LocalDBPath, "f", cfg.LocalDBPath, "local database file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.BoolVar(&cfg.AllowResubmitAfterReject, "x", cfg.AllowResubmitAfterReject, "allow resubmitting rejected access requests")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
