// Package config loads jsonxl defaults from a TOML or YAML file.
//
// The default location is ~/.config/jsonxl/config.toml. A missing file is not
// an error; built-in defaults are used instead. Files ending in .yaml or .yml
// are parsed as YAML, everything else as TOML.
//
//	url = "https://api.example.com/report?access_token=..."
//	output = "~/reports/dados.xlsx"
//	timeout = "60s"
//	sheet_name = "Sheet1"
//	log_file = "~/.local/state/jsonxl/jsonxl.log"
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

type Config struct {
	URL        string
	OutputPath string
	Timeout    time.Duration
	SheetName  string
	LogFile    string
}

const (
	defaultConfigPath = "~/.config/jsonxl/config.toml"
	DefaultOutputName = "dados.xlsx"
	DefaultTimeout    = 60 * time.Second
	DefaultSheetName  = "Sheet1"
)

type rawConfig struct {
	URL       string `toml:"url" yaml:"url"`
	Output    string `toml:"output" yaml:"output"`
	Timeout   string `toml:"timeout" yaml:"timeout"`
	SheetName string `toml:"sheet_name" yaml:"sheet_name"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		OutputPath: defaultOutputPath(),
		Timeout:    DefaultTimeout,
		SheetName:  DefaultSheetName,
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing or a field is blank.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Default()

	cfg.URL = strings.TrimSpace(raw.URL)

	if output := strings.TrimSpace(raw.Output); output != "" {
		cfg.OutputPath = mustExpand(output)
	}

	if timeout := strings.TrimSpace(raw.Timeout); timeout != "" {
		d, err := ParseTimeout(timeout)
		if err != nil {
			return Config{}, err
		}
		cfg.Timeout = d
	}

	if sheet := strings.TrimSpace(raw.SheetName); sheet != "" {
		cfg.SheetName = sheet
	}

	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}

	return cfg, nil
}

// ParseTimeout parses a Go duration string and rejects non-positive values.
func ParseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse timeout: %s is not positive", s)
	}
	return d, nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func defaultOutputPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultOutputName
	}
	return filepath.Join(wd, DefaultOutputName)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
