package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/folderctl/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	File     string
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envConfig     = "FOLDERCTL_CONFIG"
	envStore      = "FOLDERCTL_STORE"
	envSeed       = "FOLDERCTL_SEED"
	envMaxFilters = "FOLDERCTL_MAX_FILTERS"
	envPoll       = "FOLDERCTL_POLL"
	envWidth      = "FOLDERCTL_WIDTH"
	envHeight     = "FOLDERCTL_HEIGHT"
	envShowFooter = "FOLDERCTL_FOOTER"
	envVerbose    = "FOLDERCTL_VERBOSE"
	envTrace      = "FOLDERCTL_TRACE"
	envLogFile    = "FOLDERCTL_LOG_FILE"
)

const (
	defaultStorePath  = "folderctl.db"
	defaultMaxFilters = 10
	defaultPoll       = time.Second
)

var (
	errFilterAndNew    = errors.New("-filter and -new cannot be combined")
	errMaxFilters      = errors.New("max-filters must be >= 1")
	errPollNonPositive = errors.New("poll must be > 0")
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values layer as
// config file, then environment, then flags.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	path, explicit := scanConfigFlag(args)
	if !explicit {
		if v, ok := env[envConfig]; ok && strings.TrimSpace(v) != "" {
			path, explicit = v, true
		} else {
			path = configPathFunc()
		}
	}
	file, err := ReadFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	filePoll, err := time.ParseDuration(file.Watch.Poll)
	if err != nil {
		return Config{}, fmt.Errorf("parse config poll %q: %w", file.Watch.Poll, err)
	}

	fs := flag.NewFlagSet("folderctl", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", path, "path to the TOML config file")
	store := fs.String("store", envOrDefault(env, envStore, file.Store.Path), "path to the SQLite folder store")
	filterID := fs.Int64("filter", 0, "open the edit panel for this folder id")
	create := fs.Bool("new", false, "open the create panel")
	seed := fs.String("seed", envOrDefault(env, envSeed, file.Store.Seed), "YAML file of folders and peers to load into an empty store")
	maxFilters := fs.Int("max-filters", envOrInt(env, envMaxFilters, file.Store.MaxFilters), "maximum number of folders the store accepts")
	poll := fs.Duration("poll", envOrDuration(env, envPoll, filePoll), "interval between store revision checks")
	width := fs.Int("width", envOrInt(env, envWidth, file.UI.Width), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, file.UI.Height), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, file.UI.Footer), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, file.Log.Trace), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, file.UI.Verbose), "print success messages for actions")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, file.Log.File), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			StorePath:    *store,
			FilterID:     *filterID,
			Create:       *create,
			SeedPath:     *seed,
			MaxFilters:   *maxFilters,
			PollInterval: *poll,
			Width:        *width,
			Height:       *height,
			ShowFooter:   *footer,
			Verbose:      *verbose,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		File: path,
		Flags: map[string]string{
			"config":     path,
			"store":      *store,
			"filter":     strconv.FormatInt(*filterID, 10),
			"new":        strconv.FormatBool(*create),
			"seed":       *seed,
			"maxFilters": strconv.Itoa(*maxFilters),
			"poll":       poll.String(),
			"width":      strconv.Itoa(*width),
			"height":     strconv.Itoa(*height),
			"footer":     strconv.FormatBool(*footer),
			"trace":      strconv.FormatBool(*trace),
			"verbose":    strconv.FormatBool(*verbose),
			"logFile":    *logFile,
		},
		Args: append([]string(nil), fs.Args()...),
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// scanConfigFlag finds -config ahead of the main parse so the file can supply
// the other flag defaults.
func scanConfigFlag(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v, true
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects combinations the application cannot start with.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if a.MaxFilters < 1 {
		return fmt.Errorf("%w (got %d)", errMaxFilters, a.MaxFilters)
	}
	if a.PollInterval <= 0 {
		return fmt.Errorf("%w (got %s)", errPollNonPositive, a.PollInterval)
	}
	if a.FilterID < 0 {
		return fmt.Errorf("filter must be >= 0 (got %d)", a.FilterID)
	}
	if a.FilterID != 0 && a.Create {
		return errFilterAndNew
	}
	if strings.TrimSpace(a.StorePath) == "" {
		return errors.New("store path must not be empty")
	}
	return nil
}
