package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/folderctl/internal/app"
	"github.com/atomicstack/folderctl/internal/config"
	"github.com/atomicstack/folderctl/internal/logging"
	"github.com/atomicstack/folderctl/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	traceStartup(runtimeCfg)

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":       cfg.Args,
		"flags":      flags,
		"config":     cfg,
		"store":      cfg.App.StorePath,
		"mode":       startMode(cfg.App),
		"maxFilters": cfg.App.MaxFilters,
	}
	if cfg.App.FilterID != 0 {
		payload["filter"] = cfg.App.FilterID
	}
	if cfg.App.SeedPath != "" {
		payload["seed"] = cfg.App.SeedPath
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

// startMode names the screen the program opens on. The replica id is only
// known once the store is open and is logged there.
func startMode(a app.Config) string {
	switch {
	case a.FilterID != 0:
		return "edit"
	case a.Create:
		return "create"
	default:
		return "picker"
	}
}

type ttyDetails struct {
	Detected    *ttyDetected    `json:"detected,omitempty"`
	Descriptors []ttyDescriptor `json:"descriptors"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyDescriptor struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails reports terminal support and size for the standard
// descriptors. The first sized terminal becomes the detected one.
func collectTTYDetails() ttyDetails {
	files := []*os.File{os.Stdin, os.Stdout, os.Stderr}
	names := []string{"stdin", "stdout", "stderr"}
	info := ttyDetails{Descriptors: make([]ttyDescriptor, 0, len(files))}
	for i, file := range files {
		desc := ttyDescriptor{Name: names[i]}
		fd := int(file.Fd())
		if fd < 0 || !term.IsTerminal(fd) {
			info.Descriptors = append(info.Descriptors, desc)
			continue
		}
		desc.IsTerminal = true
		width, height, err := term.GetSize(fd)
		if err != nil {
			desc.Error = err.Error()
		} else {
			desc.Width, desc.Height = width, height
			if info.Detected == nil {
				info.Detected = &ttyDetected{Source: desc.Name, Width: width, Height: height}
			}
		}
		info.Descriptors = append(info.Descriptors, desc)
	}
	return info
}
