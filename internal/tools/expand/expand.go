// Package expand implements the rset-expand command: it reads a recurrence
// set, either as canonical set text or as an iCalendar document, and prints
// its occurrences.
package expand

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cyp0633/librecur/internal/platform/config"
)

// Output formats.
const (
	FormatText  = "text"
	FormatICS   = "ics"
	FormatXML   = "xml"
	FormatRRule = "rrule"
)

// envPrefix prefixes every environment variable read by the command.
const envPrefix = "RSET"

var formats = []string{FormatText, FormatICS, FormatXML, FormatRRule}

// Config holds configuration for recurrence set expansion.
type Config struct {
	Input         string
	Format        string
	After         string
	Before        string
	Inclusive     bool
	Limit         int
	MaxIterations int
	LogLevel      string
}

type envConfig struct {
	MaxIterations int    `env:"MAX_ITERATIONS" envDefault:"1000000"`
	Format        string `env:"FORMAT" envDefault:"text"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"warn"`
}

// ParseConfig parses environment variables and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg, envPrefix); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Format:        envCfg.Format,
		Inclusive:     true,
		MaxIterations: envCfg.MaxIterations,
		LogLevel:      envCfg.LogLevel,
	}

	fs.StringVar(&cfg.Input, "in", "", "file with set text or an iCalendar document (default: stdin)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: text, ics, xml or rrule (default: RSET_FORMAT or text)")
	fs.StringVar(&cfg.After, "after", "", "range start, RFC 3339 (required with -before)")
	fs.StringVar(&cfg.Before, "before", "", "range end, RFC 3339 (required with -after)")
	fs.BoolVar(&cfg.Inclusive, "inclusive", cfg.Inclusive, "include set text occurrences that fall on a range bound")
	fs.IntVar(&cfg.Limit, "limit", 0, "max occurrences per series (0 = no limit)")
	fs.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "max candidate occurrences evaluated per query (default: RSET_MAX_ITERATIONS or 1000000)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error (default: RSET_LOG_LEVEL or warn)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// window is the optional query range.
type window struct {
	after, before time.Time
	set           bool
}

func parseWindow(cfg Config) (window, error) {
	if cfg.After == "" && cfg.Before == "" {
		return window{}, nil
	}
	if cfg.After == "" || cfg.Before == "" {
		return window{}, errors.New("-after and -before must be given together")
	}

	after, err := time.Parse(time.RFC3339, cfg.After)
	if err != nil {
		return window{}, fmt.Errorf("parse -after: %w", err)
	}
	before, err := time.Parse(time.RFC3339, cfg.Before)
	if err != nil {
		return window{}, fmt.Errorf("parse -before: %w", err)
	}
	if before.Before(after) {
		return window{}, errors.New("-before must not be earlier than -after")
	}
	return window{after: after, before: before, set: true}, nil
}

// Run reads a recurrence set from cfg.Input, or from in when no input file
// is configured, and writes it to out in the configured format. Logs go to
// errOut.
func Run(cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if !slices.Contains(formats, cfg.Format) {
		return fmt.Errorf("unsupported format %q (want one of %s)", cfg.Format, strings.Join(formats, ", "))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	win, err := parseWindow(cfg)
	if err != nil {
		return err
	}

	if cfg.Input != "" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	if in == nil {
		return errors.New("input is required")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	src, err := readSource(string(data), cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Format == FormatRRule {
		return writeRRule(out, src)
	}

	occurrences, err := src.occurrences(win, cfg)
	if err != nil {
		return err
	}
	logger.Info("recurrence expanded",
		"series", len(src.series),
		"occurrences", len(occurrences))

	switch cfg.Format {
	case FormatICS:
		return writeICS(out, occurrences, time.Now().UTC())
	case FormatXML:
		return writeXML(out, occurrences)
	default:
		return writeText(out, occurrences)
	}
}
