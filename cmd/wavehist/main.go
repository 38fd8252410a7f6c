// wavehist is an interactive shell around a waveform history buffer.
//
// With a terminal on stdin it starts a prompt; otherwise it executes
// commands from stdin line by line, so scripts can be piped in.
package main

import (
	"flag"
	"fmt"
	"os"

	prompt "github.com/c-bata/go-prompt"
	"golang.org/x/term"

	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/logging"
	"github.com/xtxerr/wavehist/internal/storage"
	"github.com/xtxerr/wavehist/internal/storage/config"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	cfgPath := flag.String("config", "wavehist.yaml", "config file path")
	capacity := flag.Int("capacity", 0, "segments per channel (overrides config)")
	width := flag.Int("width", 0, "channel count (overrides config)")
	exportDir := flag.String("export-dir", "", "export directory (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	jsonLogs := flag.Bool("json-logs", false, "log as JSON")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if !errors.Is(err, errors.ErrConfigNotFound) {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 1
		}
		cfg = config.DefaultConfig()
	}

	// CLI overrides
	if *capacity != 0 {
		cfg.History.Capacity = *capacity
	}
	if *width != 0 {
		cfg.History.Width = *width
	}
	if *exportDir != "" {
		cfg.Export.Dir = *exportDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *jsonLogs {
		cfg.Logging.JSON = true
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	logging.Init(level, cfg.Logging.JSON)
	log := logging.Component("cli")

	svc, err := storage.New(cfg)
	if err != nil {
		log.Error("create storage", "error", err)
		return 1
	}
	defer svc.Close()

	log.Info("wavehist started",
		"version", Version,
		"capacity", cfg.History.Capacity,
		"width", cfg.History.Width,
	)

	sh := newShell(svc, os.Stdout)

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if failed := sh.runScript(os.Stdin); failed > 0 {
			log.Warn("script finished with errors", "failed", failed)
			return 1
		}
		return 0
	}

	p := prompt.New(
		sh.executor,
		sh.completer,
		prompt.OptionPrefix("wavehist> "),
		prompt.OptionTitle("wavehist"),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return sh.done }),
	)
	p.Run()
	return 0
}
