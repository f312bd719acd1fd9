package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// Supported output encodings.
const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

func parseImageFormat(s string) (ImageFormat, error) {
	switch f := ImageFormat(strings.ToLower(s)); f {
	case ImagePNG, ImageJPEG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (png or jpeg)", s)
	}
}

// Config is the track chart CLI configuration.
type Config struct {
	DBPath     string
	SessionID  int64
	OutputFile string
	Format     ImageFormat

	FontPath      string
	NoAnnotations bool

	Width    int
	MinPower *float64
	MaxPower *float64

	Verbose bool
}

// NewConfigFromCLI parses and validates the command line.
func NewConfigFromCLI() (*Config, error) {
	var c Config
	var format string
	var minPower, maxPower float64

	flag.StringVar(&c.DBPath, "db", "", "Chase database produced by the tracker service")
	flag.Int64Var(&c.SessionID, "s", 1, "Session row ID to plot")
	flag.StringVar(&c.OutputFile, "o", "", "Output file path (extension appended from -f)")
	flag.StringVar(&format, "f", string(ImagePNG), "Output image format: png or jpeg")
	flag.StringVar(&c.FontPath, "font", "", "TTF font for scales and the info bar; without it annotations are skipped")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Draw markers only, no scales or info bar")
	flag.IntVar(&c.Width, "w", 1200, "Power chart width in pixels")
	flag.Float64Var(&minPower, "min-power", 0, "Clamp the chart's lower power bound (dBm)")
	flag.Float64Var(&maxPower, "max-power", 0, "Clamp the chart's upper power bound (dBm)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	// Zero is a legitimate dBm bound, so only flags the operator actually
	// set become clamps.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		}
	})

	if err := c.validate(format); err != nil {
		flag.Usage()
		return nil, err
	}

	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return &c, nil
}

func (c *Config) validate(format string) error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.SessionID <= 0 {
		return fmt.Errorf("invalid session ID: %d", c.SessionID)
	}
	if c.OutputFile == "" {
		return errors.New("output file is required")
	}
	if c.Width <= 0 {
		return fmt.Errorf("invalid chart width: %d", c.Width)
	}
	if c.MinPower != nil && c.MaxPower != nil && *c.MaxPower <= *c.MinPower {
		return errors.New("max power must be greater than min power")
	}

	f, err := parseImageFormat(format)
	if err != nil {
		return err
	}
	c.Format = f

	return nil
}
