package commands

import "context"

type outputCommand struct{}

func (outputCommand) Name() string { return "output" }
func (outputCommand) Args() string { return "[file]" }
func (outputCommand) Description() string {
	return "Write results to a file, or back to stdout with no argument"
}

func (outputCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		return ContinueResult, opts.Output.ToBase()
	}
	return ContinueResult, opts.Output.ToFile(opts.Input[1], false)
}

type teeCommand struct{}

func (teeCommand) Name() string { return "tee" }
func (teeCommand) Args() string { return "[file]" }
func (teeCommand) Description() string {
	return "Write results to both stdout and a file"
}

func (teeCommand) Execute(_ context.Context, opts *Options) (Result, error) {
	if len(opts.Input) <= 1 {
		return ContinueResult, opts.Output.ToBase()
	}
	return ContinueResult, opts.Output.ToFile(opts.Input[1], true)
}
