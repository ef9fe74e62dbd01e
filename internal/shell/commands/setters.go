package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/internal/intl"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

type localeCommand struct{}

func (localeCommand) Name() string { return "locale" }
func (localeCommand) Args() string { return "[locale]" }
func (localeCommand) Description() string { return "Set the display locale" }

func (c localeCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		if _, err := fmt.Fprintf(opts.Output, "Locale: %s\n", opts.Settings.Locale); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}
	locale := opts.Input[1]
	if !intl.Valid(locale) {
		return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: locale}
	}
	opts.Settings.Locale = locale
	return ContinueResult, nil
}

type formatCommand struct{}

func (formatCommand) Name() string { return "format" }
func (formatCommand) Args() string {
	return strings.Join(format.Formats(), "|")
}
func (formatCommand) Description() string { return "Set the results format" }

func (c formatCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		if _, err := fmt.Fprintf(opts.Output, "Format: %s\n", opts.Settings.ResultsFormat); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}
	identifier := opts.Input[1]
	if _, err := format.Get(identifier); err != nil {
		return ContinueResult, err
	}
	opts.Settings.ResultsFormat = identifier
	return ContinueResult, nil
}

type limitCommand struct{}

func (limitCommand) Name() string { return "limit" }
func (limitCommand) Args() string { return "[rows]" }
func (limitCommand) Description() string { return "Set the maximum rows returned, 0 for unlimited" }

func (c limitCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		limit := intl.FormatInt(opts.Settings.Locale, int64(opts.Settings.ResultsLimit))
		if _, err := fmt.Fprintf(opts.Output, "Limit: %s\n", limit); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}
	limit, err := strconv.Atoi(opts.Input[1])
	if err != nil || limit < 0 {
		return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: opts.Input[1]}
	}
	opts.Settings.ResultsLimit = limit
	return ContinueResult, nil
}

type themeCommand struct{}

func (themeCommand) Name() string { return "theme" }
func (themeCommand) Args() string { return "default|light|dark" }
func (themeCommand) Description() string { return "Set the table color theme" }

func (c themeCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		if _, err := fmt.Fprintf(opts.Output, "Theme: %s\n", opts.Settings.Theme); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}
	theme := strings.ToLower(opts.Input[1])
	switch theme {
	case "default", "light", "dark":
		opts.Settings.Theme = theme
	default:
		return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: opts.Input[1]}
	}
	return ContinueResult, nil
}

type completionsCommand struct{}

func (completionsCommand) Name() string { return "completions" }
func (completionsCommand) Args() string { return "off|basic|smart" }
func (completionsCommand) Description() string { return "Set the completion mode" }

func (c completionsCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		if _, err := fmt.Fprintf(opts.Output, "Completions: %s\n", opts.Settings.Completions); err != nil {
			return ContinueResult, err
		}
		return ContinueResult, nil
	}
	mode := strings.ToLower(opts.Input[1])
	switch mode {
	case "off", "basic", "smart":
		opts.Settings.Completions = mode
		opts.Settings.Autocomplete = mode != "off"
		opts.Settings.SmartCompletions = mode == "smart"
	default:
		return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: opts.Input[1]}
	}
	return ContinueResult, nil
}
