package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051"), "" disables gRPC
//	-d string   database DSN, "memory://" for the in-process store
//	-s string   JWT HMAC secret key
//	-k string   admin API key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-w int      replay window, seconds
//
// Args are filtered with flagx.FilterArgs first so flags owned by other
// components (-c, -config) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-k", "-t", "-r", "-w"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminAPIKey, "k", config.AdminAPIKey, "admin API key")

	accessTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")
	window := fs.Int("w", int(config.ReplayWindow.Seconds()), "replay window (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only overwrite durations that were passed, so sub-minute values from
	// JSON or env survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTTL) * time.Minute
		case "w":
			config.ReplayWindow = time.Duration(*window) * time.Second
		}
	})
	return nil
}
