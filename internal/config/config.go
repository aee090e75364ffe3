// Package config loads client settings from files and the environment.
//
// A loaded File is a patch: only keys present in the source are set, so it
// can be layered over the library defaults and validated there.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey   = "SHIPENGINE_API_KEY"
	EnvBaseURL  = "SHIPENGINE_BASE_URL"
	EnvPageSize = "SHIPENGINE_PAGE_SIZE"
	EnvRetries  = "SHIPENGINE_RETRIES"
	EnvTimeout  = "SHIPENGINE_TIMEOUT"
)

// File holds the settings found in a config source. Nil fields were absent.
type File struct {
	APIKey   *string
	BaseURL  *string
	PageSize *int
	Retries  *int
	Timeout  *time.Duration
}

// rawFile is the on-disk shape shared by TOML and YAML. Timeout accepts a Go
// duration string ("10s") or a bare number of seconds.
type rawFile struct {
	APIKey   *string `toml:"api_key" yaml:"api_key"`
	BaseURL  *string `toml:"base_url" yaml:"base_url"`
	PageSize *int    `toml:"page_size" yaml:"page_size"`
	Retries  *int    `toml:"retries" yaml:"retries"`
	Timeout  *string `toml:"timeout" yaml:"timeout"`
}

// Load reads path as TOML or YAML depending on its extension.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return File{}, fmt.Errorf("load config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return File{}, fmt.Errorf("load config %s: %w", path, err)
		}
	default:
		return File{}, fmt.Errorf("load config %s: unsupported extension %q", path, ext)
	}

	return raw.toFile()
}

func (r rawFile) toFile() (File, error) {
	f := File{
		APIKey:   trimmed(r.APIKey),
		BaseURL:  trimmed(r.BaseURL),
		PageSize: r.PageSize,
		Retries:  r.Retries,
	}
	if r.Timeout != nil {
		d, err := parseTimeout(*r.Timeout)
		if err != nil {
			return File{}, fmt.Errorf("parse timeout: %w", err)
		}
		f.Timeout = &d
	}
	return f, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. With no
// arguments it loads ".env" and ignores a missing file.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			return nil
		}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv returns f with any SHIPENGINE_* variables laid over it. Unset or
// empty variables leave the file value alone.
func ApplyEnv(f File) (File, error) {
	return applyEnv(f, os.LookupEnv)
}

func applyEnv(f File, lookup func(string) (string, bool)) (File, error) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIKey); ok {
		f.APIKey = &v
	}
	if v, ok := get(EnvBaseURL); ok {
		f.BaseURL = &v
	}
	if v, ok := get(EnvPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return File{}, fmt.Errorf("parse %s: %w", EnvPageSize, err)
		}
		f.PageSize = &n
	}
	if v, ok := get(EnvRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return File{}, fmt.Errorf("parse %s: %w", EnvRetries, err)
		}
		f.Retries = &n
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return File{}, fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		f.Timeout = &d
	}
	return f, nil
}

// parseTimeout accepts "1500ms", "10s" or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
