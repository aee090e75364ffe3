// Command shipengine calls ShipEngine JSON-RPC methods from the command line.
//
// Usage:
//
//	shipengine [-config file] [-env file] [-v] call <rpc-method> [path=value ...]
//	shipengine [-config file] [-env file] config
//
// Settings come from the config file (.toml, .yaml or .yml), then the
// SHIPENGINE_* environment variables, which win.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/shipengine/shipengine-go"
	"github.com/shipengine/shipengine-go/internal/config"
)

// errReported means the failure was already written to stderr.
var errReported = errors.New("error reported")

// IO holds the streams used by run.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultIO returns the process streams.
func DefaultIO() IO {
	return IO{Stdout: os.Stdout, Stderr: os.Stderr}
}

type cliOptions struct {
	configPath string
	envPath    string
	verbose    bool
}

func run(ctx context.Context, args []string, streams IO, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("shipengine", flag.ContinueOnError)
	fs.SetOutput(streams.Stderr)

	var opts cliOptions
	fs.StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml or .yml)")
	fs.StringVar(&opts.envPath, "env", "", "env file to load (default: .env if present)")
	fs.BoolVar(&opts.verbose, "v", false, "log every request and response")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("usage: shipengine [flags] call <rpc-method> [path=value ...] | config")
	}

	file, err := loadSettings(opts)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "config":
		return printConfig(streams, file)
	case "call":
		if len(rest) < 2 {
			return errors.New("usage: shipengine call <rpc-method> [path=value ...]")
		}
		params, err := buildParams(rest[2:])
		if err != nil {
			return err
		}
		client, err := newClient(file, opts.verbose, logger)
		if err != nil {
			return reportError(streams, err)
		}
		return call(ctx, streams, client, rest[1], params)
	default:
		return fmt.Errorf("unknown command: %s", rest[0])
	}
}

func loadSettings(opts cliOptions) (config.File, error) {
	var envFiles []string
	if opts.envPath != "" {
		envFiles = append(envFiles, opts.envPath)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.File{}, err
	}

	var file config.File
	if opts.configPath != "" {
		f, err := config.Load(opts.configPath)
		if err != nil {
			return config.File{}, err
		}
		file = f
	}
	return config.ApplyEnv(file)
}

func clientOptions(f config.File) []shipengine.Option {
	var opts []shipengine.Option
	if f.BaseURL != nil {
		opts = append(opts, shipengine.WithBaseURL(*f.BaseURL))
	}
	if f.PageSize != nil {
		opts = append(opts, shipengine.WithPageSize(*f.PageSize))
	}
	if f.Retries != nil {
		opts = append(opts, shipengine.WithRetries(*f.Retries))
	}
	if f.Timeout != nil {
		opts = append(opts, shipengine.WithTimeout(*f.Timeout))
	}
	return opts
}

func apiKey(f config.File) string {
	if f.APIKey == nil {
		return ""
	}
	return *f.APIKey
}

func newClient(f config.File, verbose bool, logger zerolog.Logger) (*shipengine.Client, error) {
	opts := append(clientOptions(f), shipengine.WithLogger(logger))
	if verbose {
		opts = append(opts, shipengine.WithListener(shipengine.NewLogListener(logger.Level(zerolog.DebugLevel))))
	}
	return shipengine.New(apiKey(f), opts...)
}

// buildParams turns path=value pairs into a JSON object. Values that are
// valid JSON are inserted as-is; anything else becomes a string.
func buildParams(pairs []string) (json.RawMessage, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	doc := []byte(`{}`)
	for _, pair := range pairs {
		path, value, ok := strings.Cut(pair, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid parameter %q: want path=value", pair)
		}

		var err error
		if json.Valid([]byte(value)) {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value))
		} else {
			doc, err = sjson.SetBytes(doc, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", path, err)
		}
	}
	return doc, nil
}

func call(ctx context.Context, streams IO, client *shipengine.Client, method string, params json.RawMessage) error {
	var p any
	if params != nil {
		p = params
	}

	var result json.RawMessage
	if err := client.Call(ctx, method, p, &result); err != nil {
		return reportError(streams, err)
	}

	_, err := streams.Stdout.Write(pretty.Pretty(result))
	return err
}

func reportError(streams IO, err error) error {
	e, ok := shipengine.AsError(err)
	if !ok {
		return err
	}
	data, mErr := json.Marshal(e)
	if mErr != nil {
		return err
	}
	if _, wErr := streams.Stderr.Write(pretty.Pretty(data)); wErr != nil {
		return errors.Join(err, wErr)
	}
	return errReported
}

type settingsOutput struct {
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
	PageSize int    `json:"pageSize"`
	Retries  int    `json:"retries"`
	Timeout  string `json:"timeout"`
}

func printConfig(streams IO, f config.File) error {
	cfg, err := shipengine.NewConfig(apiKey(f), clientOptions(f)...)
	if err != nil {
		return reportError(streams, err)
	}

	data, err := json.Marshal(settingsOutput{
		APIKey:   maskKey(cfg.APIKey),
		BaseURL:  cfg.BaseURL,
		PageSize: cfg.PageSize,
		Retries:  cfg.Retries,
		Timeout:  cfg.Timeout.String(),
	})
	if err != nil {
		return err
	}
	_, err = streams.Stdout.Write(pretty.Pretty(data))
	return err
}

// maskKey keeps the first four characters of key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	default:
		return 1
	}
}

func fatal(w io.Writer, err error) {
	if !errors.Is(err, errReported) && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(w, err)
	}
	os.Exit(exitCode(err))
}
