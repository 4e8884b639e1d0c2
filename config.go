package dshow

import (
	"errors"
	"io"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/reusee/e5"
	"gopkg.in/yaml.v3"
)

// PathStyle selects how trace records display file paths.
type PathStyle uint8

const (
	// PathRelative shows paths relative to the working directory at tracer construction,
	// falling back to full paths outside of it.
	PathRelative PathStyle = iota
	PathFull
	PathBase
)

func (p PathStyle) String() string {
	switch p {
	case PathRelative:
		return "relative"
	case PathFull:
		return "full"
	case PathBase:
		return "base"
	}
	return "unknown"
}

func ParsePathStyle(s string) (PathStyle, error) {
	switch s {
	case "", "relative":
		return PathRelative, nil
	case "full":
		return PathFull, nil
	case "base":
		return PathBase, nil
	}
	return 0, we.With(
		e5.Info("unknown path style %q", s),
	)(
		ErrBadConfig,
	)
}

// Config configures a Tracer.
type Config struct {
	// Indent is the number of spaces per pretty-printing level.
	Indent int `yaml:"indent"`
	// MaxDepth bounds rendered nesting, zero for unbounded.
	MaxDepth int `yaml:"max_depth"`
	// PathStyle is one of relative, full, base.
	PathStyle string `yaml:"path_style"`
	// Color is one of auto, always, never.
	Color string `yaml:"color"`
}

func DefaultConfig() Config {
	return Config{
		Indent:    len(defaultIndent),
		MaxDepth:  defaultMaxDepth,
		PathStyle: PathRelative.String(),
		Color:     "never",
	}
}

// LoadConfig decodes a YAML config. Missing keys keep their DefaultConfig values.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, we.With(
			e5.Info("decode config"),
		)(
			errors.Join(err, ErrBadConfig),
		)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultConfig(), we(err)
	}
	defer f.Close()
	config, err := LoadConfig(f)
	if err != nil {
		return config, we.With(
			e5.Info("config file %s", path),
		)(err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if _, err := safecast.Conv[uint8](c.Indent); err != nil {
		return we.With(
			e5.Info("indent %d out of range", c.Indent),
		)(
			errors.Join(err, ErrBadConfig),
		)
	}
	if c.MaxDepth < 0 {
		return we.With(
			e5.Info("negative max_depth %d", c.MaxDepth),
		)(
			ErrBadConfig,
		)
	}
	if _, err := ParsePathStyle(c.PathStyle); err != nil {
		return err
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return we.With(
			e5.Info("unknown color mode %q", c.Color),
		)(
			ErrBadConfig,
		)
	}
	return nil
}

func (c Config) Formatter() Formatter {
	return Formatter{
		Indent:   strings.Repeat(" ", c.Indent),
		MaxDepth: c.MaxDepth,
	}
}

// NewTracer builds a tracer writing records to w.
func (c Config) NewTracer(w io.Writer) (*Tracer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	style, err := ParsePathStyle(c.PathStyle)
	if err != nil { // NOCOVER
		return nil, err
	}
	sink := NewWriterSink(w)
	if c.Color == "always" || (c.Color == "auto" && isTerminal(w)) {
		sink = sink.WithColor()
	}
	return NewTracer(sink).
		WithFormatter(c.Formatter()).
		WithPathStyle(style), nil
}
