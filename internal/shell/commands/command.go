// Package commands implements the shell meta-commands: toggles, setters,
// metadata inspection, output sinks, scripting and lifecycle. Commands
// are registered by name and dispatched by shortest unique prefix.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

// LoopCondition tells the REPL whether to keep reading input.
type LoopCondition int

const (
	Continue LoopCondition = iota
	Exit
)

// Result is a command's verdict: continue the loop, or exit with a code.
type Result struct {
	Condition LoopCondition
	ExitCode  int
}

// ContinueResult keeps the loop running.
var ContinueResult = Result{Condition: Continue}

// ExitResult stops the loop with the given process exit code.
func ExitResult(code int) Result {
	return Result{Condition: Exit, ExitCode: code}
}

// Executor re-runs input lines, used by .read to replay script files.
type Executor interface {
	Run(ctx context.Context, input string) (Result, error)
}

// Options is the context a command executes in. Input holds the tokenized
// line including the command token itself.
type Options struct {
	Settings   *config.Settings
	Connection driver.Connection
	Commands   *Registry
	Executor   Executor
	History    []string
	Input      []string
	Output     *format.Output
	Logger     *slog.Logger
}

// Command is a single shell meta-command.
type Command interface {
	// Name returns the command name, without the command identifier.
	Name() string
	// Args describes the command's arguments, empty when it takes none.
	Args() string
	Description() string
	Execute(ctx context.Context, opts *Options) (Result, error)
}

// Registry holds the available commands in registration order.
type Registry struct {
	commands []Command
}

// NewRegistry returns a registry with the full default command set.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Add(
		bailCommand(),
		changesCommand(),
		catalogsCommand{},
		clearCommand{},
		colorCommand(),
		completionsCommand{},
		describeCommand{},
		driversCommand{},
		echoCommand(),
		exitCommand{name: "exit"},
		footerCommand(),
		foreignCommand{},
		formatCommand{},
		headerCommand(),
		helpCommand{},
		historyCommand{},
		indexesCommand{},
		limitCommand{},
		localeCommand{},
		autocompleteCommand(),
		highlighterCommand(),
		multilineCommand(),
		outputCommand{},
		primaryCommand{},
		exitCommand{name: "quit"},
		readCommand{},
		rowsCommand(),
		schemasCommand{},
		sleepCommand{},
		smartCompletionsCommand(),
		systemCommand{},
		tablesCommand{},
		teeCommand{},
		themeCommand{},
		timerCommand(),
		viewsCommand{},
	)
	return r
}

// Add appends commands to the registry.
func (r *Registry) Add(commands ...Command) {
	r.commands = append(r.commands, commands...)
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	return r.commands
}

// Get returns the command with the exact name.
func (r *Registry) Get(name string) (Command, bool) {
	for _, c := range r.commands {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Match resolves name by exact match first, then by unique prefix.
func (r *Registry) Match(name string) (Command, bool) {
	if c, ok := r.Get(name); ok {
		return c, true
	}
	var match Command
	for _, c := range r.commands {
		if len(c.Name()) > len(name) && c.Name()[:len(name)] == name {
			if match != nil {
				return nil, false
			}
			match = c
		}
	}
	if match == nil {
		return nil, false
	}
	return match, true
}

// RenderOptions builds formatter options from the live settings.
func RenderOptions(settings *config.Settings, elapsed time.Duration) *format.Options {
	return &format.Options{
		Changes: settings.ResultsChanges,
		Color:   settings.Color,
		Elapsed: elapsed,
		Footer:  settings.ResultsFooter,
		Header:  settings.ResultsHeader,
		Locale:  settings.Locale,
		Rows:    settings.ResultsRows,
		Theme:   settings.Theme,
		Timer:   settings.ResultsTimer,
	}
}

// renderResult formats an in-memory result through the active formatter.
func renderResult(ctx context.Context, opts *Options, elapsed time.Duration, columns []string, rows []driver.Row) error {
	formatter, err := format.Get(opts.Settings.ResultsFormat)
	if err != nil {
		return err
	}
	results := format.QueryResults(driver.NewMemoryQueryResult(columns, rows))
	return formatter.Format(ctx, RenderOptions(opts.Settings, elapsed), results, opts.Output)
}

func usageError(opts *Options, command Command) error {
	return fmt.Errorf("usage: %s%s %s", opts.Settings.CommandIdentifier, command.Name(), command.Args())
}
