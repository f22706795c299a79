package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/trackball-inspect/internal/output"
)

// ErrUsage is returned when the command line asks for, or needs, the usage text.
var ErrUsage = errors.New("usage requested")

// Config holds the plotseries settings. File values are loaded first and
// command line flags override them.
type Config struct {
	File     string        `yaml:"-"`
	Output   string        `yaml:"output"` // base name, the format is appended
	Format   output.Format `yaml:"format"`
	DBPath   string        `yaml:"db"`
	LogLevel string        `yaml:"logLevel"`
	Width    float64       `yaml:"width"`  // inches
	Height   float64       `yaml:"height"` // inches

	// Archive reads. Capture selects an archived log instead of File;
	// From and To bound its raw timestamps (inclusive).
	Capture int64  `yaml:"-"`
	From    *int64 `yaml:"-"`
	To      *int64 `yaml:"-"`
	List    bool   `yaml:"-"`

	level slog.Level
}

func NewConfig() *Config {
	return &Config{
		Format:   output.FormatPNG,
		LogLevel: slog.LevelInfo.String(),
		Width:    defaultWidthInch,
		Height:   defaultHeightInch,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c := NewConfig()
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return c, nil
}

// Level returns the log level parsed when the configuration was validated.
func (c *Config) Level() slog.Level {
	return c.level
}

// OutputPath returns the output file name, or "" when the chart is shown in a window.
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return ""
	}
	return output.Path(c.Output, c.Format)
}

func (c *Config) validate() error {
	format, err := output.ParseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = format

	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid chart size: %gx%g", c.Width, c.Height)
	}
	if err = c.level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if (c.Capture != 0 || c.List) && c.DBPath == "" {
		return errors.New("db path is required to read the archive")
	}
	if c.Capture < 0 {
		return fmt.Errorf("invalid capture ID: %d", c.Capture)
	}
	if (c.From != nil || c.To != nil) && c.Capture == 0 {
		return errors.New("time range requires a capture ID")
	}
	if c.From != nil && c.To != nil && *c.From > *c.To {
		return fmt.Errorf("invalid time range: %d > %d", *c.From, *c.To)
	}
	return nil
}

// NewConfigFromCLI parses args (without the program name). Usage goes to stdout.
func NewConfigFromCLI(prog string, args []string, stdout io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage:\n    %s filename\n    %s -db archive.db -capture id\n\nOptions:\n", prog, prog)
		fs.PrintDefaults()
	}

	defaults := NewConfig()
	var configPath, format string
	var from, to int64
	flagged := NewConfig()
	fs.StringVar(&configPath, "c", "", "Path to a YAML configuration file")
	fs.StringVar(&flagged.Output, "o", "", "Write the chart to this file instead of opening a window (extension is added)")
	fs.StringVar(&format, "f", string(defaults.Format), "Output format. [png, jpeg, html]")
	fs.StringVar(&flagged.DBPath, "db", "", "SQLite archive. Logs read from files are stored in it, -capture and -list read from it")
	fs.StringVar(&flagged.LogLevel, "log-level", defaults.LogLevel, "Log level. [debug, info, warn, error]")
	fs.Float64Var(&flagged.Width, "width", defaults.Width, "Chart width in inches")
	fs.Float64Var(&flagged.Height, "height", defaults.Height, "Chart height in inches")
	fs.Int64Var(&flagged.Capture, "capture", 0, "Plot the archived log with this capture ID instead of a file")
	fs.Int64Var(&from, "from", 0, "First raw timestamp to plot from the archived log")
	fs.Int64Var(&to, "to", 0, "Last raw timestamp to plot from the archived log")
	fs.BoolVar(&flagged.List, "list", false, "List the archived logs and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrUsage
		}
		return nil, err
	}
	if fs.NArg() == 0 && flagged.Capture == 0 && !flagged.List {
		fs.Usage()
		return nil, ErrUsage
	}

	c := defaults
	if configPath != "" {
		var err error
		if c, err = LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			c.Output = flagged.Output
		case "f":
			c.Format = output.Format(format)
		case "db":
			c.DBPath = flagged.DBPath
		case "log-level":
			c.LogLevel = flagged.LogLevel
		case "width":
			c.Width = flagged.Width
		case "height":
			c.Height = flagged.Height
		case "capture":
			c.Capture = flagged.Capture
		case "from":
			c.From = &from
		case "to":
			c.To = &to
		case "list":
			c.List = flagged.List
		}
	})
	c.File = fs.Arg(0)

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
