package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"superrename/internal/config"
	"superrename/internal/debug"
	appErrors "superrename/internal/errors"
	"superrename/internal/process"
	"superrename/internal/store"
	"superrename/internal/update"
)

const description = "superrename: project scaffolding and toolchain bootstrap"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires the application and returns the process exit status. It is the only
// place that decides the status; main only passes it to os.Exit.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := config.Initialize(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error initializing config: %v\n", err)
		return 1
	}
	defer debug.Close()

	a := newApp(globalSettings{}, stdout, stderr)
	a.setup = func(a *app) error {
		return wireRuntime(a, stderr)
	}
	return a.execute(ctx, args)
}

// wireRuntime opens the debug log and builds the runner and upgrade controller. It
// runs after flag overrides have been applied, so --debug takes effect here.
func wireRuntime(a *app, stderr io.Writer) error {
	globalDir, err := config.GlobalDir()
	if err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "determine global directory", err)
	}

	if err := debug.Init(config.GetBool(config.KeyDebug), globalDir); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: debug logging disabled: %v\n", err)
	}
	logger := debug.Logger()

	stderrFile, _ := stderr.(*os.File)
	runner := process.NewRunner(
		process.WithIndicator(process.NewIndicator(stderrFile)),
		process.WithLogger(logger),
	)
	st := store.New(globalDir, config.ToolName, Version,
		store.WithOutput(a.stdout),
		store.WithLogger(logger),
	)
	a.upgrader = update.NewController(update.Config{
		ToolName:       config.ToolName,
		Version:        Version,
		RepositoryURL:  config.GetString(config.KeyRepositoryURL),
		GitBin:         config.GetString(config.KeyGitBin),
		PackageManager: config.GetString(config.KeyPackageManager),
	}, st, runner,
		update.WithOutput(a.stdout),
		update.WithLogger(logger),
	)
	a.delegator = runner
	a.logger = logger.Named("cli")
	return nil
}

// settings is the part of the config package the CLI touches after flag parsing.
type settings interface {
	ApplyOverrides(overrides map[string]any) error
	GetBool(key string) bool
}

type globalSettings struct{}

func (globalSettings) ApplyOverrides(overrides map[string]any) error {
	return config.ApplyOverrides(overrides)
}

func (globalSettings) GetBool(key string) bool { return config.GetBool(key) }

// upgrader runs the upgrade flow.
type upgrader interface {
	CheckAndUpgrade(ctx context.Context, force bool) (update.Outcome, error)
}

// delegator runs external sub-commands.
type delegator interface {
	Run(ctx context.Context, cmd process.Command) process.Result
}

// errInvocationDone stops dispatch after an upgrade attempt that rebuilt the tool.
var errInvocationDone = errors.New("invocation ended by upgrade")

type app struct {
	settings  settings
	upgrader  upgrader
	delegator delegator
	stdout    io.Writer
	stderr    io.Writer
	logger    *zap.Logger

	// setup builds upgrader and delegator once flags are applied. Nil keeps them as set.
	setup func(a *app) error

	// exitCode is set by commands whose status is not an error, such as a delegated install.
	exitCode int
}

func newApp(s settings, stdout, stderr io.Writer) *app {
	return &app{
		settings: s,
		stdout:   stdout,
		stderr:   stderr,
		logger:   zap.NewNop(),
	}
}

// execute parses args and dispatches the command. Before the command runs, the root's
// persistent pre-run applies flag overrides and performs the implicit upgrade check.
func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(os.Stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	err := root.ExecuteContext(ctx)
	if errors.Is(err, errInvocationDone) {
		return 0
	}
	if err != nil {
		return reportFailure(a.stdout, a.stderr, err)
	}
	return a.exitCode
}

// prepare runs before every command: it applies explicitly set global flags, wires the
// runtime, then runs the implicit non-forced check unless it is skipped.
func (a *app) prepare(cmd *cobra.Command) error {
	overrides := map[string]any{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case flagDebug:
			overrides[config.KeyDebug] = f.Value.String() == "true"
		case flagSkipUpgradeCheck:
			overrides[config.KeySkipUpgradeCheck] = f.Value.String() == "true"
		}
	})
	if err := a.settings.ApplyOverrides(overrides); err != nil {
		return appErrors.New(appErrors.CodeConfigurationError, "apply flag overrides", err)
	}

	if a.setup != nil {
		if err := a.setup(a); err != nil {
			return err
		}
	}

	if a.settings.GetBool(config.KeySkipUpgradeCheck) {
		a.logger.Debug("implicit upgrade check skipped")
		return nil
	}
	if force, err := cmd.Flags().GetBool(flagForce); err == nil && force {
		// upgrade --force runs its own check.
		return nil
	}

	outcome, err := a.upgrader.CheckAndUpgrade(cmd.Context(), false)
	if err != nil {
		return err
	}
	a.logger.Debug("implicit upgrade check", zap.Stringer("outcome", outcome))
	if outcome.Terminal() {
		return errInvocationDone
	}
	return nil
}
