package shell

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/internal/shell/commands"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

// Executor routes a logical input line to either a meta-command or the
// connection's SQL surface, then renders the result through the active
// formatter.
type Executor struct {
	Settings   *config.Settings
	Commands   *commands.Registry
	Connection driver.Connection
	Output     *format.Output
	History    *[]string
	Logger     *slog.Logger
}

// NewExecutor wires an executor around a connection.
func NewExecutor(settings *config.Settings, registry *commands.Registry, connection driver.Connection, output *format.Output, history *[]string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		Settings:   settings,
		Commands:   registry,
		Connection: connection,
		Output:     output,
		History:    history,
		Logger:     logger,
	}
}

// Run executes one input line and reports whether the loop continues.
func (e *Executor) Run(ctx context.Context, input string) (commands.Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return commands.ContinueResult, nil
	}

	if e.Settings.Echo {
		if _, err := fmt.Fprintln(e.Output, input); err != nil {
			return commands.ContinueResult, err
		}
	}

	if strings.HasPrefix(input, e.Settings.CommandIdentifier) {
		return e.runCommand(ctx, input)
	}
	return e.runSQL(ctx, input)
}

func (e *Executor) runCommand(ctx context.Context, input string) (commands.Result, error) {
	tokens := Tokenize(input)
	name := strings.TrimPrefix(tokens[0], e.Settings.CommandIdentifier)

	command, ok := e.Commands.Match(name)
	if !ok {
		return commands.ContinueResult, driver.InvalidCommandError{CommandName: name}
	}

	e.Logger.Debug("executing command", "command", command.Name())
	var history []string
	if e.History != nil {
		history = *e.History
	}
	opts := &commands.Options{
		Settings:   e.Settings,
		Connection: e.Connection,
		Commands:   e.Commands,
		Executor:   e,
		History:    history,
		Input:      tokens,
		Output:     e.Output,
		Logger:     e.Logger,
	}
	return command.Execute(ctx, opts)
}

func (e *Executor) runSQL(ctx context.Context, sql string) (commands.Result, error) {
	formatter, err := format.Get(e.Settings.ResultsFormat)
	if err != nil {
		return commands.ContinueResult, err
	}

	start := time.Now()
	var results *format.Results
	if driver.ClassifyStatement(sql) == driver.StatementQuery {
		result, err := e.Connection.Query(ctx, sql)
		if err != nil {
			return commands.ContinueResult, err
		}
		defer func() { _ = result.Close() }()
		if limit := e.Settings.ResultsLimit; limit > 0 {
			results = format.QueryResults(driver.NewLimitQueryResult(result, limit))
		} else {
			results = format.QueryResults(result)
		}
	} else {
		affected, err := e.Connection.Execute(ctx, sql)
		if err != nil {
			return commands.ContinueResult, err
		}
		results = format.ExecuteResults(affected)
	}
	elapsed := time.Since(start)

	options := commands.RenderOptions(e.Settings, elapsed)
	if err := formatter.Format(ctx, options, results, e.Output); err != nil {
		return commands.ContinueResult, err
	}
	return commands.ContinueResult, nil
}
