package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

type Config struct {
	DBPath     string
	SessionID  int64
	OutputFile string
	Format     ImageFormat

	// FontPath points at a TTF used for axis and legend text. Empty
	// disables annotations.
	FontPath string

	Width  int
	Height int
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Width:  1200,
		Height: 600,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat string
	flag.StringVar(&c.DBPath, "db", "", "Path to the flight database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font for annotations (empty disables them)")
	flag.IntVar(&c.Width, "w", c.Width, "Chart width in pixels")
	flag.IntVar(&c.Height, "h", c.Height, "Chart height in pixels")
	flag.Parse()

	c.Format = ImageFormat(strings.ToLower(imageFormat))
	if _, ok := validImageFormats[c.Format]; !ok {
		return nil, fmt.Errorf("invalid image format '%s'", imageFormat)
	}

	if c.DBPath == "" {
		return nil, errors.New("no database file provided")
	}
	if c.OutputFile == "" {
		return nil, errors.New("no output file provided")
	}
	if c.Width < 300 || c.Height < 200 {
		return nil, fmt.Errorf("chart size %dx%d is too small", c.Width, c.Height)
	}

	return c, nil
}
