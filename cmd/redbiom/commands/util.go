package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adswafford/redbiom/internal/cli/output"
	"github.com/adswafford/redbiom/internal/logger"
	"github.com/adswafford/redbiom/pkg/config"
	"github.com/adswafford/redbiom/pkg/kv"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStore loads configuration, initializes logging, and opens the
// configured key-value backend. The caller must Close the store.
func openStore() (kv.Store, *config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, nil, err
	}

	store, err := config.OpenStore(cfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, cfg, nil
}

// newPrinter builds a Printer honoring the global --output flag.
func newPrinter() (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format), nil
}

// readSampleIDs collects sample identifiers from positional args and,
// when from is set, one per line from the named file ("-" for stdin).
func readSampleIDs(args []string, from string) ([]string, error) {
	ids := append([]string(nil), args...)

	if from != "" {
		var r io.Reader
		if from == "-" {
			r = os.Stdin
		} else {
			f, err := os.Open(from)
			if err != nil {
				return nil, err
			}
			defer func() { _ = f.Close() }()
			r = f
		}

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			id := strings.TrimSpace(scanner.Text())
			if id != "" {
				ids = append(ids, id)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no sample identifiers given (pass them as arguments or via --from)")
	}
	return ids, nil
}

// openOutput returns the writer for a command's payload, stdout when
// path is empty or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

// closeOutput closes w unless it is stdout.
func closeOutput(w io.WriteCloser) error {
	if w == os.Stdout {
		return nil
	}
	return w.Close()
}
