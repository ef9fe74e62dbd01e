package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the default config file, looked up under ~/.rsql.
const ConfigFileName = "rsql.yaml"

// findConfigFile resolves the config file to use.
// Priority: explicit path > $RSQL_CONFIG > ~/.rsql/rsql.yaml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := os.Getenv("RSQL_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(home, ".rsql", ConfigFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Load builds Settings from defaults, the config file, RSQL_ environment
// variables and changed CLI flags, in ascending precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if configFile := findConfigFile(cfgFile); configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		expandEnv(k)
	}

	// 3. Environment variables: RSQL_RESULTS_FORMAT -> results_format
	if err := k.Load(env.Provider("RSQL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "RSQL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Changed flags override everything
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "format" {
				return "results_format", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if settings.HistoryFile == "" {
		if path := os.Getenv("RSQL_HISTORY"); path != "" {
			settings.HistoryFile = path
		} else if home, err := os.UserHomeDir(); err == nil {
			settings.HistoryFile = filepath.Join(home, ".rsql", "history.txt")
		}
	}

	return &settings, nil
}

// expandEnv substitutes ${VAR} references in string values loaded from
// the config file.
func expandEnv(k *koanf.Koanf) {
	for key, value := range k.All() {
		s, ok := value.(string)
		if !ok || !strings.Contains(s, "${") {
			continue
		}
		expanded := os.Expand(s, func(name string) string {
			return os.Getenv(name)
		})
		_ = k.Set(key, expanded)
	}
}
