// Package shell implements the interactive REPL and the line executor
// behind it. Lines are either meta-commands dispatched by prefix or SQL
// routed to the connection and rendered by the active formatter.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/rsql/internal/config"
	"github.com/leapstack-labs/rsql/internal/format"
	"github.com/leapstack-labs/rsql/internal/shell/commands"
	"github.com/leapstack-labs/rsql/pkg/driver"
)

const (
	prompt             = "rsql> "
	continuationPrompt = "  ...> "
)

// Shell drives a session over one connection.
type Shell struct {
	settings   *config.Settings
	registry   *commands.Registry
	connection driver.Connection
	output     *format.Output
	logger     *slog.Logger
	history    []string
	executor   *Executor
}

// New builds a shell writing to stdout.
func New(settings *config.Settings, connection driver.Connection, logger *slog.Logger) *Shell {
	return NewWithOutput(settings, connection, logger, format.NewOutput(os.Stdout))
}

// NewWithOutput builds a shell with an explicit output sink.
func NewWithOutput(settings *config.Settings, connection driver.Connection, logger *slog.Logger, output *format.Output) *Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Shell{
		settings:   settings,
		registry:   commands.NewRegistry(),
		connection: connection,
		output:     output,
		logger:     logger,
	}
	s.executor = NewExecutor(settings, s.registry, connection, output, &s.history, logger)
	return s
}

// Run reads lines interactively until EOF or an exit command and returns
// the process exit code.
func (s *Shell) Run(ctx context.Context) (int, error) {
	rl, err := readline.NewEx(s.readlineConfig(ctx))
	if err != nil {
		return 1, fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			pending.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		if err != nil {
			return 1, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		input, complete := s.accumulate(&pending, line)
		if !complete {
			rl.SetPrompt(continuationPrompt)
			continue
		}
		rl.SetPrompt(prompt)

		s.remember(rl, input)
		result, err := s.executor.Run(ctx, input)
		if err != nil {
			if exit, code := s.reportError(err); exit {
				return code, nil
			}
			continue
		}
		if result.Condition == commands.Exit {
			return result.ExitCode, nil
		}
	}
}

// RunReader executes lines from a script or piped stdin and returns the
// process exit code. Errors bail immediately regardless of the bail
// setting, matching non-interactive expectations.
func (s *Shell) RunReader(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		input, complete := s.accumulate(&pending, line)
		if !complete {
			continue
		}
		result, err := s.executor.Run(ctx, input)
		if err != nil {
			s.printError(err)
			return 1, nil
		}
		if result.Condition == commands.Exit {
			return result.ExitCode, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 1, err
	}
	if rest := strings.TrimSpace(pending.String()); rest != "" {
		result, err := s.executor.Run(ctx, strings.TrimSuffix(rest, ";"))
		if err != nil {
			s.printError(err)
			return 1, nil
		}
		if result.Condition == commands.Exit {
			return result.ExitCode, nil
		}
	}
	return 0, nil
}

// accumulate merges a line into the pending multi-line SQL buffer.
// Meta-commands complete immediately; SQL completes on a trailing
// semicolon when multiline mode is on.
func (s *Shell) accumulate(pending *strings.Builder, line string) (string, bool) {
	if pending.Len() == 0 && strings.HasPrefix(line, s.settings.CommandIdentifier) {
		return line, true
	}
	if !s.settings.Multiline {
		return strings.TrimSuffix(line, ";"), true
	}
	if pending.Len() > 0 {
		pending.WriteString(" ")
	}
	pending.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return "", false
	}
	input := strings.TrimSuffix(pending.String(), ";")
	pending.Reset()
	return input, true
}

func (s *Shell) remember(rl *readline.Instance, input string) {
	if !s.settings.History {
		return
	}
	if limit := s.settings.HistoryLimit; limit > 0 && len(s.history) >= limit {
		s.history = s.history[len(s.history)-limit+1:]
	}
	s.history = append(s.history, input)
	_ = rl.SaveHistory(input)
}

// reportError prints err and decides whether the loop exits. Invalid
// command and option errors always continue; anything else bails when
// bail_on_error is set.
func (s *Shell) reportError(err error) (bool, int) {
	var invalidCommand driver.InvalidCommandError
	var invalidOption driver.InvalidOptionError
	if errors.As(err, &invalidCommand) || errors.As(err, &invalidOption) {
		fmt.Fprintf(s.output, "%v\n", err)
		fmt.Fprintf(s.output, "Type %shelp for a list of commands\n", s.settings.CommandIdentifier)
		return false, 0
	}
	s.printError(err)
	if s.settings.BailOnError {
		return true, 1
	}
	return false, 0
}

func (s *Shell) printError(err error) {
	label := "Error:"
	if s.settings.Color {
		label = text.FgRed.Sprint(label)
	}
	fmt.Fprintf(s.output, "%s %v\n", label, err)
}

func (s *Shell) readlineConfig(ctx context.Context) *readline.Config {
	cfg := &readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       s.settings.CommandIdentifier + "quit",
	}
	if s.settings.History && s.settings.HistoryFile != "" {
		_ = os.MkdirAll(filepath.Dir(s.settings.HistoryFile), 0o755)
		cfg.HistoryFile = s.settings.HistoryFile
		cfg.HistoryLimit = s.settings.HistoryLimit
	}
	if s.settings.Autocomplete {
		cfg.AutoComplete = s.completer(ctx)
	}
	return cfg
}

// completer offers command names and, with smart completions, table
// names reflected from the connection.
func (s *Shell) completer(ctx context.Context) readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for _, command := range s.registry.Commands() {
		items = append(items, readline.PcItem(s.settings.CommandIdentifier+command.Name()))
	}
	for _, keyword := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "FROM", "WHERE"} {
		items = append(items, readline.PcItem(keyword))
	}
	if s.settings.SmartCompletions && s.connection != nil {
		if metadata, err := s.connection.Metadata(ctx); err == nil {
			if schema, ok := metadata.CurrentSchema(); ok {
				for _, table := range schema.Tables() {
					items = append(items, readline.PcItem(table.Name()))
				}
			}
		}
	}
	return readline.NewPrefixCompleter(items...)
}
