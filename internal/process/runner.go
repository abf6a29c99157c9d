// Package process runs external commands on behalf of the upgrade flow.
//
// Every command carries its own working directory; nothing here changes the
// process-wide current directory. Run never fails: start failures and non-zero
// exits are both reported through Result so callers decide what counts as an error.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// ExitNotFound is reported when the executable cannot be found.
	ExitNotFound = 127
	// ExitCannotStart is reported when the command exists but could not be started.
	ExitCannotStart = 126
)

// Command describes one external command invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Label string

	// When set, the streams are attached instead of captured.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs and messages.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	return strings.Join(parts, " ")
}

// Result is the outcome of a command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is set when the command could not be started or was interrupted.
	Err error
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// LookPathFunc resolves a binary reference to an executable path.
type LookPathFunc func(bin string) (string, error)

// Runner executes commands with exec.CommandContext.
type Runner struct {
	indicator Indicator
	lookPath  LookPathFunc
	logger    *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithIndicator sets the progress indicator shown while commands run.
func WithIndicator(ind Indicator) Option {
	return func(r *Runner) {
		if ind != nil {
			r.indicator = ind
		}
	}
}

// WithLookPath overrides executable discovery.
func WithLookPath(fn LookPathFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.lookPath = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a runner. Without options it shows no progress and uses exec.LookPath.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		indicator: nopIndicator{},
		lookPath:  exec.LookPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("process")
	return r
}

// LookPath reports where bin is installed.
func (r *Runner) LookPath(bin string) (string, error) {
	return r.lookPath(bin)
}

// Run executes cmd while the indicator shows cmd.Label.
func (r *Runner) Run(ctx context.Context, cmd Command) Result {
	if cmd.Label != "" {
		r.indicator.Start(cmd.Label)
		defer r.indicator.Stop()
	}
	return r.run(ctx, cmd)
}

// RunSteps executes steps in order under a single indicator. Every step runs even
// when an earlier one fails; the overall result is that of the last step.
func (r *Runner) RunSteps(ctx context.Context, label string, steps []Command) (Result, []Result) {
	if len(steps) == 0 {
		return Result{}, nil
	}
	if label != "" {
		r.indicator.Start(label)
		defer r.indicator.Stop()
	}
	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		results = append(results, r.run(ctx, step))
	}
	return results[len(results)-1], results
}

func (r *Runner) run(ctx context.Context, cmd Command) Result {
	start := time.Now()

	//nolint:gosec // G204: commands are fixed tool invocations built by this program
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdin = cmd.Stdin
	c.Stdout = &stdout
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	c.Stderr = &stderr
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	}

	err := c.Run()
	res := Result{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		res.Err = err
	}
	if err != nil && ctx.Err() != nil {
		res.Err = ctx.Err()
	}

	r.logger.Debug("command finished",
		zap.String("cmd", cmd.String()),
		zap.String("dir", cmd.Dir),
		zap.Int("exit", res.ExitCode),
		zap.Duration("took", time.Since(start)),
		zap.NamedError("start_error", res.Err),
	)
	return res
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// Killed by a signal.
		return 1
	}
	if errors.Is(err, exec.ErrNotFound) {
		return ExitNotFound
	}
	return ExitCannotStart
}
