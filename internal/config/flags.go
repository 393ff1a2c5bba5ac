package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the local vault database file
//	-l string   log level (debug|info|warn|error)
//	-t int      session TTL in seconds
//
// The function filters os.Args to only include the flags it knows about, so
// flags owned by other overlay stages (like -config) do not trip it up.
func parseFlags(cfg *Config) {
	args := filterArgs(os.Args[1:], []string{"-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local vault database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Seconds()), "session TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTTL = time.Duration(*sessionTTL) * time.Second
}

// filterArgs keeps only the flags named in keep (and their values), so a
// FlagSet can parse a partial view of os.Args without choking on flags it
// does not define.
func filterArgs(args, keep []string) []string {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}

	var out []string
	for i := 0; i < len(args); i++ {
		if _, ok := keepSet[args[i]]; ok {
			out = append(out, args[i])
			if i+1 < len(args) {
				out = append(out, args[i+1])
				i++
			}
		}
	}
	return out
}
