package commands

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

type readCommand struct{}

func (readCommand) Name() string { return "read" }
func (readCommand) Args() string { return "<file>" }
func (readCommand) Description() string { return "Execute the statements in a file" }

func (c readCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		return ContinueResult, usageError(opts, c)
	}
	data, err := os.ReadFile(opts.Input[1])
	if err != nil {
		return ContinueResult, driver.IOError(err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result, err := opts.Executor.Run(ctx, line)
		if err != nil {
			return result, err
		}
		if result.Condition == Exit {
			return result, nil
		}
	}
	return ContinueResult, nil
}

type sleepCommand struct{}

func (sleepCommand) Name() string { return "sleep" }
func (sleepCommand) Args() string { return "[seconds]" }
func (sleepCommand) Description() string { return "Pause for a number of seconds" }

func (c sleepCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	seconds := 1.0
	if len(opts.Input) > 1 {
		parsed, err := strconv.ParseFloat(opts.Input[1], 64)
		if err != nil || parsed < 0 {
			return ContinueResult, driver.InvalidOptionError{CommandName: c.Name(), Option: opts.Input[1]}
		}
		seconds = parsed
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	case <-ctx.Done():
		return ContinueResult, ctx.Err()
	}
	return ContinueResult, nil
}

type systemCommand struct{}

func (systemCommand) Name() string { return "system" }
func (systemCommand) Args() string { return "<command> [args]" }
func (systemCommand) Description() string { return "Run a system command" }

func (c systemCommand) Execute(ctx context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		return ContinueResult, usageError(opts, c)
	}
	cmd := exec.CommandContext(ctx, opts.Input[1], opts.Input[2:]...)
	cmd.Stdout = opts.Output
	cmd.Stderr = opts.Output
	if err := cmd.Run(); err != nil {
		return ContinueResult, driver.IOError(err)
	}
	return ContinueResult, nil
}
