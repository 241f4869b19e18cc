// Package platform resolves per-user locations for the config file and board storage.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the per-user config and data directories.
const DefaultAppName = "kanboard"

// Paths holds the resolved per-user locations for config and board state.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	StateDir   string
}

// Options selects the application directory name.
type Options struct {
	AppName string
	DevMode bool
}

// Env is the process state path resolution depends on.
type Env struct {
	GOOS   string
	Home   string
	Getenv func(string) string
}

// CurrentEnv captures the running process environment.
// Home is left empty when it cannot be determined; Resolve fails only if it needs it.
func CurrentEnv() Env {
	home, _ := os.UserHomeDir()
	return Env{GOOS: runtime.GOOS, Home: home, Getenv: os.Getenv}
}

// Resolve returns the paths for the running process.
func Resolve(opts Options) (Paths, error) {
	return CurrentEnv().Resolve(opts)
}

// Resolve computes the paths for env.
// Dev mode appends "-dev" to the app directory.
func (e Env) Resolve(opts Options) (Paths, error) {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = DefaultAppName
	}
	if strings.ContainsAny(name, `/\`) {
		return Paths{}, fmt.Errorf("app name %q must not contain path separators", name)
	}
	if opts.DevMode {
		name += "-dev"
	}

	configBase, dataBase, err := e.bases()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(dataBase, name)
	return Paths{
		ConfigPath: filepath.Join(configBase, name, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, name+".db"),
		StateDir:   filepath.Join(dataDir, "state"),
	}, nil
}

// bases picks the config and data roots for the platform.
func (e Env) bases() (string, string, error) {
	switch e.GOOS {
	case "windows":
		roaming := e.lookup("APPDATA")
		local := e.lookup("LOCALAPPDATA")
		if roaming == "" || local == "" {
			if e.Home == "" {
				return "", "", errors.New("APPDATA/LOCALAPPDATA unset and no home dir")
			}
			roaming = firstSet(roaming, filepath.Join(e.Home, "AppData", "Roaming"))
			local = firstSet(local, filepath.Join(e.Home, "AppData", "Local"))
		}
		return roaming, local, nil
	case "darwin":
		if e.Home == "" {
			return "", "", errors.New("empty home dir")
		}
		base := filepath.Join(e.Home, "Library", "Application Support")
		return base, base, nil
	default:
		config := e.xdg("XDG_CONFIG_HOME")
		data := e.xdg("XDG_DATA_HOME")
		if config == "" || data == "" {
			if e.Home == "" {
				return "", "", errors.New("XDG dirs unset and no home dir")
			}
			config = firstSet(config, filepath.Join(e.Home, ".config"))
			data = firstSet(data, filepath.Join(e.Home, ".local", "share"))
		}
		return config, data, nil
	}
}

func (e Env) lookup(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(e.Getenv(key))
}

// xdg returns an XDG base dir; relative values are invalid and ignored.
func (e Env) xdg(key string) string {
	v := e.lookup(key)
	if !filepath.IsAbs(v) {
		return ""
	}
	return v
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
