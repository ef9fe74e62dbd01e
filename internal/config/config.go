// Package config loads shell settings from defaults, an optional YAML
// config file, RSQL_-prefixed environment variables and CLI flags, in
// ascending precedence.
package config

// Settings holds every tunable the shell exposes. Field names match the
// config file keys; toggles and setters mutate the live struct.
type Settings struct {
	BailOnError       bool   `koanf:"bail_on_error"`
	Color             bool   `koanf:"color"`
	CommandIdentifier string `koanf:"command_identifier"`
	Echo              bool   `koanf:"echo"`
	Locale            string `koanf:"locale"`
	Theme             string `koanf:"theme"`

	Autocomplete     bool   `koanf:"autocomplete"`
	Highlighter      bool   `koanf:"highlighter"`
	History          bool   `koanf:"history"`
	HistoryFile      string `koanf:"history_file"`
	HistoryLimit     int    `koanf:"history_limit"`
	Multiline        bool   `koanf:"multiline"`
	Completions      string `koanf:"completions"`
	SmartCompletions bool   `koanf:"smart_completions"`

	ResultsChanges bool   `koanf:"results_changes"`
	ResultsFooter  bool   `koanf:"results_footer"`
	ResultsFormat  string `koanf:"results_format"`
	ResultsHeader  bool   `koanf:"results_header"`
	ResultsLimit   int    `koanf:"results_limit"`
	ResultsRows    bool   `koanf:"results_rows"`
	ResultsTimer   bool   `koanf:"results_timer"`

	URL     string `koanf:"url"`
	File    string `koanf:"file"`
	Verbose bool   `koanf:"verbose"`
}

// Default returns the settings a fresh shell starts with.
func Default() *Settings {
	return &Settings{
		Color:             true,
		CommandIdentifier: ".",
		Locale:            "en",
		Theme:             "default",
		Autocomplete:      true,
		Highlighter:       true,
		History:           true,
		HistoryLimit:      1000,
		Multiline:         true,
		Completions:       "smart",
		SmartCompletions:  true,
		ResultsChanges:    true,
		ResultsFooter:     true,
		ResultsFormat:     "psql",
		ResultsHeader:     true,
		ResultsLimit:      100,
		ResultsRows:       true,
		ResultsTimer:      true,
	}
}

func defaultMap() map[string]interface{} {
	return map[string]interface{}{
		"bail_on_error":      false,
		"color":              true,
		"command_identifier": ".",
		"echo":               false,
		"locale":             "en",
		"theme":              "default",
		"autocomplete":       true,
		"highlighter":        true,
		"history":            true,
		"history_limit":      1000,
		"multiline":          true,
		"completions":        "smart",
		"smart_completions":  true,
		"results_changes":    true,
		"results_footer":     true,
		"results_format":     "psql",
		"results_header":     true,
		"results_limit":      100,
		"results_rows":       true,
		"results_timer":      true,
		"verbose":            false,
	}
}
