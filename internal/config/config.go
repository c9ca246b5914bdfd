// Package config loads the server configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/internal/core/raster"
	"github.com/tngrm/tngrm/internal/core/validation"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration document.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Log        LogConfig         `yaml:"log"`
	Magnet     MagnetConfig      `yaml:"magnet"`
	Validation validation.Config `yaml:"validation"`
	Raster     RasterConfig      `yaml:"raster"`
	Pieces     PiecesConfig      `yaml:"pieces"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	StaticDir    string        `yaml:"static_dir"`
	IndexFile    string        `yaml:"index_file"`
	LevelsFile   string        `yaml:"levels_file"`
	MaxBodySize  int64         `yaml:"max_body_size"`
	AdminToken   string        `yaml:"admin_token"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// MagnetConfig sets the snap distance used by POST /api/snap.
type MagnetConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// RasterConfig sets the side in pixels of the square silhouette canvas.
type RasterConfig struct {
	Size int `yaml:"size"`
}

// PiecesConfig selects the template table. An empty File uses the built-in
// tangram set.
type PiecesConfig struct {
	Unit float64 `yaml:"unit"`
	File string  `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			StaticDir:    ".",
			IndexFile:    "tngrm.html",
			LevelsFile:   "levels.json",
			MaxBodySize:  1024 * 1024, // 1MB
			AdminToken:   "admin-token",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log:        LogConfig{Level: "info"},
		Magnet:     MagnetConfig{Threshold: magnet.DefaultThreshold},
		Validation: validation.DefaultConfig(),
		Raster:     RasterConfig{Size: raster.DefaultSize},
		Pieces:     PiecesConfig{Unit: pieces.DefaultUnit},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a YAML document over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch {
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Server.Port)
	case c.Server.MaxBodySize <= 0:
		return fmt.Errorf("%w: max_body_size must be positive", ErrInvalidConfig)
	case c.Server.LevelsFile == "":
		return fmt.Errorf("%w: levels_file is required", ErrInvalidConfig)
	case !positive(c.Magnet.Threshold):
		return fmt.Errorf("%w: magnet threshold %v", ErrInvalidConfig, c.Magnet.Threshold)
	case !positive(c.Pieces.Unit):
		return fmt.Errorf("%w: pieces unit %v", ErrInvalidConfig, c.Pieces.Unit)
	case c.Validation.DimensionTolerance < 0:
		return fmt.Errorf("%w: negative dimension tolerance", ErrInvalidConfig)
	case c.Validation.SimilarityThreshold < 0 || c.Validation.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity threshold %v", ErrInvalidConfig, c.Validation.SimilarityThreshold)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// LoadPieces builds the template table selected by the config.
func (c Config) LoadPieces() (*pieces.Table, error) {
	if c.Pieces.File == "" {
		return pieces.DefaultTable(c.Pieces.Unit)
	}
	f, err := os.Open(c.Pieces.File)
	if err != nil {
		return nil, fmt.Errorf("open pieces: %w", err)
	}
	defer f.Close()
	return pieces.LoadYAML(f, c.Pieces.Unit)
}
