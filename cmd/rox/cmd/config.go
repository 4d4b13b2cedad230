package cmd

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// config is the optional `rox run --config rox.yaml` / root-level
// config file: a thin YAML layer over the --trace and --show-modules
// flags, plus the REPL history path (which has no flag), for projects
// that want to check settings into source control rather than repeat
// flags.
type config struct {
	Trace       bool   `yaml:"trace"`
	ShowModules bool   `yaml:"show_modules"`
	HistoryFile string `yaml:"history_file"`
}

// loadConfig resolves the config file to use: an explicit --config path
// takes precedence, otherwise ./rox.yaml and then ~/.rox.yaml are tried.
// A missing file (when none was explicit) is not an error — config is
// entirely optional.
func loadConfig(explicitPath string) (*config, error) {
	path := explicitPath
	if path == "" {
		for _, candidate := range defaultConfigSearchPath() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return &config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicitPath == "" {
			return &config{}, nil
		}
		return nil, err
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfigSearchPath() []string {
	paths := []string{"rox.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".rox.yaml"))
	}
	return paths
}
