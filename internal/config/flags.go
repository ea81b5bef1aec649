package config

import (
	"flag"
	"os"
	"time"

	"github.com/knetproto/kindex/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-n string   notification channel name
//	-w int      worker pool size
//	-r int      fetch retry attempts
//	-y int      fetch retry delay, milliseconds
//	-m string   metrics/health bind address
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in milliseconds and then
//     converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n", "-w", "-r", "-y", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Channel, "n", config.Channel, "notification channel name")
	fs.IntVar(&config.WorkerCount, "w", config.WorkerCount, "worker pool size")
	fs.IntVar(&config.FetchRetryAttempts, "r", config.FetchRetryAttempts, "fetch retry attempts")

	fetchRetryDelay := fs.Int("y", int(config.FetchRetryDelay.Milliseconds()), "fetch retry delay (in milliseconds)")

	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics bind address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.FetchRetryDelay = time.Duration(*fetchRetryDelay) * time.Millisecond
}
