package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

// toggle is the shared implementation of every on/off command: with no
// argument it prints the current value, with on/off it sets it, anything
// else is an invalid option.
type toggle struct {
	name        string
	description string
	label       string
	get         func(*config.Settings) bool
	set         func(*config.Settings, bool)
}

func (t toggle) Name() string { return t.name }
func (t toggle) Args() string { return "on|off" }
func (t toggle) Description() string { return t.description }

func (t toggle) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		value := "off"
		if t.get(opts.Settings) {
			value = "on"
		}
		if _, err := fmt.Fprintf(opts.Output, "%s: %s\n", t.label, value); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}

	switch strings.ToLower(opts.Input[1]) {
	case "on":
		t.set(opts.Settings, true)
	case "off":
		t.set(opts.Settings, false)
	default:
		return ContinueResult, driver.InvalidOptionError{CommandName: t.name, Option: opts.Input[1]}
	}
	return ContinueResult, nil
}

func bailCommand() Command {
	return toggle{
		name:        "bail",
		description: "Exit on the first error",
		label:       "Bail on error",
		get:         func(s *config.Settings) bool { return s.BailOnError },
		set:         func(s *config.Settings, v bool) { s.BailOnError = v },
	}
}

func changesCommand() Command {
	return toggle{
		name:        "changes",
		description: "Show affected row counts",
		label:       "Changes",
		get:         func(s *config.Settings) bool { return s.ResultsChanges },
		set:         func(s *config.Settings, v bool) { s.ResultsChanges = v },
	}
}

func colorCommand() Command {
	return toggle{
		name:        "color",
		description: "Enable or disable color output",
		label:       "Color",
		get:         func(s *config.Settings) bool { return s.Color },
		set:         func(s *config.Settings, v bool) { s.Color = v },
	}
}

func echoCommand() Command {
	return toggle{
		name:        "echo",
		description: "Echo input before executing it",
		label:       "Echo",
		get:         func(s *config.Settings) bool { return s.Echo },
		set:         func(s *config.Settings, v bool) { s.Echo = v },
	}
}

func footerCommand() Command {
	return toggle{
		name:        "footer",
		description: "Show the result footer",
		label:       "Footer",
		get:         func(s *config.Settings) bool { return s.ResultsFooter },
		set:         func(s *config.Settings, v bool) { s.ResultsFooter = v },
	}
}

func headerCommand() Command {
	return toggle{
		name:        "header",
		description: "Show the result header",
		label:       "Header",
		get:         func(s *config.Settings) bool { return s.ResultsHeader },
		set:         func(s *config.Settings, v bool) { s.ResultsHeader = v },
	}
}

func rowsCommand() Command {
	return toggle{
		name:        "rows",
		description: "Show row counts in the footer",
		label:       "Rows",
		get:         func(s *config.Settings) bool { return s.ResultsRows },
		set:         func(s *config.Settings, v bool) { s.ResultsRows = v },
	}
}

func timerCommand() Command {
	return toggle{
		name:        "timer",
		description: "Show elapsed time in the footer",
		label:       "Timer",
		get:         func(s *config.Settings) bool { return s.ResultsTimer },
		set:         func(s *config.Settings, v bool) { s.ResultsTimer = v },
	}
}

func autocompleteCommand() Command {
	return toggle{
		name:        "autocomplete",
		description: "Enable or disable autocompletion",
		label:       "Autocomplete",
		get:         func(s *config.Settings) bool { return s.Autocomplete },
		set:         func(s *config.Settings, v bool) { s.Autocomplete = v },
	}
}

func highlighterCommand() Command {
	return toggle{
		name:        "highlighter",
		description: "Enable or disable syntax highlighting",
		label:       "Highlighter",
		get:         func(s *config.Settings) bool { return s.Highlighter },
		set:         func(s *config.Settings, v bool) { s.Highlighter = v },
	}
}

func multilineCommand() Command {
	return toggle{
		name:        "multiline",
		description: "Accumulate SQL until a trailing semicolon",
		label:       "Multiline",
		get:         func(s *config.Settings) bool { return s.Multiline },
		set:         func(s *config.Settings, v bool) { s.Multiline = v },
	}
}

func smartCompletionsCommand() Command {
	return toggle{
		name:        "smart_completions",
		description: "Complete table and column names from metadata",
		label:       "Smart completions",
		get:         func(s *config.Settings) bool { return s.SmartCompletions },
		set:         func(s *config.Settings, v bool) { s.SmartCompletions = v },
	}
}
