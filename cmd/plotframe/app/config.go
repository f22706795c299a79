package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/trackball-inspect/internal/colormap"
	"github.com/roman-kulish/trackball-inspect/internal/output"
)

// ErrUsage is returned when the command line asks for, or needs, the usage text.
var ErrUsage = errors.New("usage requested")

type Config struct {
	Files     []string       `yaml:"-"`
	Output    string         `yaml:"output"`
	Format    output.Format  `yaml:"format"`
	Theme     colormap.Theme `yaml:"theme"`
	PanelSize int            `yaml:"panelSize"` // pixels
	DBPath    string         `yaml:"db"`
	LogLevel  string         `yaml:"logLevel"`

	// Captures are archived frames drawn after Files, in the given order.
	Captures []int64 `yaml:"-"`
	List     bool    `yaml:"-"`

	level slog.Level
}

func NewConfig() *Config {
	return &Config{
		Format:    output.FormatPNG,
		Theme:     colormap.DefaultTheme,
		PanelSize: defaultPanelSize,
		LogLevel:  slog.LevelInfo.String(),
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

// OutputPath returns the output file name, or "" when frames are shown in a window.
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return ""
	}
	return output.Path(c.Output, c.Format)
}

func (c *Config) validate() error {
	var err error
	if c.Format, err = output.ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.Theme, err = colormap.ParseTheme(string(c.Theme)); err != nil {
		return err
	}
	if c.PanelSize <= 0 {
		return fmt.Errorf("invalid panel size: %d", c.PanelSize)
	}
	if err = c.level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if (len(c.Captures) > 0 || c.List) && c.DBPath == "" {
		return errors.New("db path is required to read the archive")
	}
	return nil
}

// parseCaptureIDs parses a comma separated list of capture IDs.
func parseCaptureIDs(s string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid capture ID: %q", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NewConfigFromCLI parses args (without the program name). Usage goes to stdout.
func NewConfigFromCLI(prog string, args []string, stdout io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage:\n    %s filename [filename ...]\n    %s -db archive.db -capture id[,id...]\n\nOptions:\n", prog, prog)
		fs.PrintDefaults()
	}

	var configPath, format, theme, captures string
	flagged := NewConfig()
	fs.StringVar(&configPath, "c", "", "Path to a YAML configuration file")
	fs.StringVar(&flagged.Output, "o", "", "Write the figure to this file instead of opening a window (extension is added)")
	fs.StringVar(&format, "f", string(flagged.Format), "Output format. [png, jpeg, html]")
	fs.StringVar(&theme, "theme", string(flagged.Theme), "Color theme. [plasma, classic, grayscale, thermal, jungle, marine]")
	fs.IntVar(&flagged.PanelSize, "panel-size", flagged.PanelSize, "Side of one frame panel in pixels")
	fs.StringVar(&flagged.DBPath, "db", "", "SQLite archive. Frames read from files are stored in it, -capture and -list read from it")
	fs.StringVar(&captures, "capture", "", "Comma separated IDs of archived frames to draw after the files")
	fs.BoolVar(&flagged.List, "list", false, "List the archived frames and exit")
	fs.StringVar(&flagged.LogLevel, "log-level", flagged.LogLevel, "Log level. [debug, info, warn, error]")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, ErrUsage
		}
		return nil, err
	}
	ids, err := parseCaptureIDs(captures)
	if err != nil {
		return nil, err
	}
	if fs.NArg() == 0 && len(ids) == 0 && !flagged.List {
		fs.Usage()
		return nil, ErrUsage
	}

	c := NewConfig()
	if configPath != "" {
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
		case "theme":
			c.Theme = colormap.Theme(theme)
		case "panel-size":
			c.PanelSize = flagged.PanelSize
		case "db":
			c.DBPath = flagged.DBPath
		case "log-level":
			c.LogLevel = flagged.LogLevel
		case "list":
			c.List = flagged.List
		}
	})
	c.Files = fs.Args()
	c.Captures = ids

	if err = c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
