package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

type helpCommand struct{}

func (helpCommand) Name() string { return "help" }
func (helpCommand) Args() string { return "" }
func (helpCommand) Description() string { return "Show this help message" }

func (helpCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	identifier := opts.Settings.CommandIdentifier
	width := 0
	for _, command := range opts.Commands.Commands() {
		if w := len(identifier) + len(command.Name()) + len(command.Args()); w > width {
			width = w
		}
	}
	for _, command := range opts.Commands.Commands() {
		name := identifier + command.Name()
		args := command.Args()
		if args != "" {
			args = " " + args
		}
		padding := width - len(name) - len(args) + 2
		if opts.Settings.Color {
			name = text.Bold.Sprint(name)
			args = text.Faint.Sprint(args)
		}
		line := fmt.Sprintf("%s%s%s%s", name, args, strings.Repeat(" ", padding), command.Description())
		if _, err := fmt.Fprintln(opts.Output, line); err != nil {
			return ContinueResult, err
		}
	}
	return ContinueResult, nil
}

type driversCommand struct{}

func (driversCommand) Name() string { return "drivers" }
func (driversCommand) Args() string { return "" }
func (driversCommand) Description() string { return "List the available drivers" }

func (driversCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	identifiers := make([]string, 0)
	for _, d := range driver.Drivers() {
		identifiers = append(identifiers, d.Identifier())
	}
	_, err := fmt.Fprintf(opts.Output, "Drivers: %s\n", strings.Join(identifiers, ", "))
	return ContinueResult, err
}

type historyCommand struct{}

func (historyCommand) Name() string { return "history" }
func (historyCommand) Args() string { return "on|off" }
func (historyCommand) Description() string { return "Show the command history" }

func (c historyCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		state := "off"
		if opts.Settings.History {
			state = "on"
			for i, entry := range opts.History {
				if _, err := fmt.Fprintf(opts.Output, "%d: %s\n", i+1, entry); err != nil {
					return ContinueResult, err
				}
			}
		}
		_, err := fmt.Fprintf(opts.Output, "History: %s\n", state)
		return ContinueResult, err
	}
	switch strings.ToLower(opts.Input[1]) {
	case "on":
		opts.Settings.History = true
	case "off":
		opts.Settings.History = false
	default:
		return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: opts.Input[1]}
	}
	return ContinueResult, nil
}

type clearCommand struct{}

func (clearCommand) Name() string { return "clear" }
func (clearCommand) Args() string { return "" }
func (clearCommand) Description() string { return "Clear the screen" }

func (clearCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	_, err := fmt.Fprint(opts.Output, "\x1b[2J\x1b[H")
	return ContinueResult, err
}

// exitCommand backs both .exit and .quit.
type exitCommand struct {
	name string
}

func (c exitCommand) Name() string { return c.name }
func (exitCommand) Args() string { return "[code]" }
func (exitCommand) Description() string { return "Exit the shell" }

func (c exitCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	code := 0
	if len(opts.Input) > 1 {
		parsed, err := strconv.Atoi(opts.Input[1])
		if err != nil {
			return ContinueResult, driver.InvalidOptionError{CommandName: c.name, Option: opts.Input[1]}
		}
		code = parsed
	}
	return ExitResult(code), nil
}
