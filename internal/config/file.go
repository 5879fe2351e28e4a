package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// File mirrors the optional config.toml. Every value is a default that the
// environment and flags can override.
type File struct {
	Store StoreSection `toml:"store"`
	Watch WatchSection `toml:"watch"`
	UI    UISection    `toml:"ui"`
	Log   LogSection   `toml:"log"`
}

type StoreSection struct {
	Path       string `toml:"path"`
	Seed       string `toml:"seed"`
	MaxFilters int    `toml:"max_filters"`
}

type WatchSection struct {
	Poll string `toml:"poll"`
}

type UISection struct {
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
	Footer  bool `toml:"footer"`
	Verbose bool `toml:"verbose"`
}

type LogSection struct {
	File  string `toml:"file"`
	Trace bool   `toml:"trace"`
}

// DefaultFile returns the values used when no config file exists.
func DefaultFile() File {
	return File{
		Store: StoreSection{
			Path:       defaultStorePath,
			MaxFilters: defaultMaxFilters,
		},
		Watch: WatchSection{Poll: defaultPoll.String()},
	}
}

// configPathFunc resolves the config file location when neither -config nor
// the environment names one. Tests override it.
var configPathFunc = defaultConfigPath

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "folderctl", "config.toml")
}

// ReadFile loads path over the defaults. A missing file is not an error
// unless required is set.
func ReadFile(path string, required bool) (File, error) {
	file := DefaultFile()
	if path == "" {
		return file, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return file, nil
		}
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return file, nil
}
