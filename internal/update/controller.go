package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	appErrors "superrename/internal/errors"
	"superrename/internal/process"
	"superrename/internal/store"
)

// DescriptorFileName is the package descriptor expected at the root of the repository clone.
const DescriptorFileName = "package.json"

// CommandRunner executes external commands, allowing tests to inject stubs.
type CommandRunner interface {
	Run(ctx context.Context, cmd process.Command) process.Result
	RunSteps(ctx context.Context, label string, steps []process.Command) (process.Result, []process.Result)
	LookPath(bin string) (string, error)
}

// Outcome reports how an upgrade attempt ended.
type Outcome int

const (
	// OutcomeNone is returned alongside errors.
	OutcomeNone Outcome = iota
	// OutcomeSkipped means no config document was reachable.
	OutcomeSkipped
	// OutcomeThrottled means a check already ran today.
	OutcomeThrottled
	// OutcomeSyncFailed means the clone/pull failed or the descriptor was missing.
	OutcomeSyncFailed
	// OutcomeRepaired means the clone was unusable and has been removed.
	OutcomeRepaired
	// OutcomeUpToDate means the remote version matches the running one.
	OutcomeUpToDate
	// OutcomeUpgraded means the rebuild chain succeeded.
	OutcomeUpgraded
	// OutcomeRebuildFailed means the rebuild chain exited non-zero.
	OutcomeRebuildFailed
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeSyncFailed:
		return "sync_failed"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeUpToDate:
		return "up_to_date"
	case OutcomeUpgraded:
		return "upgraded"
	case OutcomeRebuildFailed:
		return "rebuild_failed"
	default:
		return "none"
	}
}

// Terminal reports whether the invocation should end after this outcome instead of
// running the requested command. A rebuild attempt, successful or not, ends it.
func (o Outcome) Terminal() bool {
	return o == OutcomeUpgraded || o == OutcomeRebuildFailed
}

// Config identifies the tool being upgraded and how to rebuild it.
type Config struct {
	ToolName       string
	Version        string
	RepositoryURL  string
	GitBin         string
	PackageManager string
}

// Controller runs the daily check, repository sync, version comparison and rebuild.
type Controller struct {
	cfg    Config
	store  *store.Store
	runner CommandRunner
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutput sets where user-facing messages are printed.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		if w != nil {
			c.out = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller. GitBin and PackageManager default to git and npm.
func NewController(cfg Config, st *store.Store, runner CommandRunner, opts ...Option) *Controller {
	if cfg.GitBin == "" {
		cfg.GitBin = "git"
	}
	if cfg.PackageManager == "" {
		cfg.PackageManager = "npm"
	}
	c := &Controller{
		cfg:    cfg,
		store:  st,
		runner: runner,
		out:    io.Discard,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("upgrade")
	return c
}

// RepositoryDir returns the location of the repository working copy.
func (c *Controller) RepositoryDir() string {
	return filepath.Join(c.store.Dir(), c.cfg.ToolName)
}

// CheckAndUpgrade runs an upgrade attempt. Unless force is set, it runs at most once
// per calendar day: the date is recorded before syncing, whatever the sync outcome.
// A missing git executable is returned as a tool_not_found error and unparseable
// config content as parse_failed; every other failure is printed and reported
// through the Outcome.
func (c *Controller) CheckAndUpgrade(ctx context.Context, force bool) (Outcome, error) {
	if !force {
		outcome, due, err := c.claimDailyCheck()
		if err != nil || !due {
			return outcome, err
		}
	}
	return c.upgrade(ctx)
}

func (c *Controller) claimDailyCheck() (Outcome, bool, error) {
	doc, err := c.store.Load("")
	if err != nil {
		return OutcomeNone, false, fmt.Errorf("load config: %w", err)
	}
	if doc == nil {
		return OutcomeSkipped, false, nil
	}

	today := c.store.Today()
	record, ok := doc[c.cfg.ToolName]
	if ok && record.LastUpgrade == today {
		c.logger.Debug("already checked today", zap.String("date", today))
		return OutcomeThrottled, false, nil
	}
	c.printf("%s daily update check in progress, please wait...\n", c.cfg.ToolName)

	if !ok {
		record = store.ToolRecord{Version: c.cfg.Version}
	}
	record.LastUpgrade = today
	doc[c.cfg.ToolName] = record
	if err := c.store.Save(doc, ""); err != nil {
		return OutcomeNone, false, fmt.Errorf("save config: %w", err)
	}
	return OutcomeNone, true, nil
}

func (c *Controller) upgrade(ctx context.Context) (Outcome, error) {
	if _, err := c.runner.LookPath(c.cfg.GitBin); err != nil {
		return OutcomeNone, appErrors.New(appErrors.CodeToolNotFound, gitMissingMessage, err)
	}

	synced, err := c.sync(ctx)
	if err != nil {
		return OutcomeNone, err
	}
	if !synced {
		return OutcomeSyncFailed, nil
	}

	repoDir := c.RepositoryDir()
	descriptorPath := filepath.Join(repoDir, DescriptorFileName)
	if !exists(descriptorPath) {
		c.printFailure()
		return OutcomeSyncFailed, nil
	}

	remote, err := c.store.LoadDescriptor(descriptorPath)
	if err != nil {
		return OutcomeNone, fmt.Errorf("load remote descriptor: %w", err)
	}
	record, ok := remote[c.cfg.ToolName]
	if remote == nil || !ok || record.Version == "" {
		c.logger.Warn("repository descriptor unusable, removing clone", zap.String("dir", repoDir))
		if err := os.RemoveAll(repoDir); err != nil {
			return OutcomeNone, fmt.Errorf("remove repository %s: %w", repoDir, err)
		}
		return OutcomeRepaired, nil
	}

	remoteVersion := record.Version
	c.logger.Debug("comparing versions",
		zap.String("local", c.cfg.Version),
		zap.String("remote", remoteVersion),
		zap.String("direction", Direction(c.cfg.Version, remoteVersion)),
	)
	if remoteVersion == c.cfg.Version {
		c.printf("Already on the latest version, no update needed ^_^\n")
		return OutcomeUpToDate, nil
	}

	return c.rebuild(ctx, repoDir, remoteVersion), nil
}

// sync brings the working copy up to date, cloning it when absent. It returns
// false after printing the failure message when the remote could not be reached.
func (c *Controller) sync(ctx context.Context) (bool, error) {
	repoDir := c.RepositoryDir()

	if exists(repoDir) {
		// Reset results are ignored; pull decides reachability.
		c.runner.Run(ctx, c.git(repoDir, "Cleaning repository", "clean", "-df"))
		c.runner.Run(ctx, c.git(repoDir, "Cleaning repository", "reset", "--hard", "HEAD"))
		res := c.runner.Run(ctx, c.git(repoDir, "Pulling latest version", "pull"))
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !res.OK() {
			c.logger.Warn("git pull failed", zap.Int("exit", res.ExitCode), zap.String("stderr", res.Stderr))
			c.printFailure()
			return false, nil
		}
		return true, nil
	}

	//nolint:gosec // G301: global dir needs standard permissions
	if err := os.MkdirAll(c.store.Dir(), 0755); err != nil {
		return false, appErrors.New(appErrors.CodeConfigurationError, "create global directory", err)
	}
	res := c.runner.Run(ctx, c.git(c.store.Dir(), "Pulling latest version", "clone", c.cfg.RepositoryURL, c.cfg.ToolName))
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !res.OK() {
		c.logger.Warn("git clone failed", zap.Int("exit", res.ExitCode), zap.String("stderr", res.Stderr))
		c.printFailure()
		return false, nil
	}
	return true, nil
}

// rebuild installs dependencies, builds, and links the new version. Every step
// runs; only the last step's exit code decides the outcome.
func (c *Controller) rebuild(ctx context.Context, repoDir, remoteVersion string) Outcome {
	pm := c.cfg.PackageManager
	steps := []process.Command{
		{Name: pm, Args: []string{"install"}, Dir: repoDir},
		{Name: pm, Args: []string{"run", "build"}, Dir: repoDir},
		{Name: pm, Args: []string{"link"}, Dir: repoDir},
	}
	label := fmt.Sprintf("Installing latest %s", c.cfg.ToolName)
	overall, results := c.runner.RunSteps(ctx, label, steps)
	for i, res := range results {
		c.logger.Debug("rebuild step", zap.String("cmd", steps[i].String()), zap.Int("exit", res.ExitCode))
	}

	if overall.OK() {
		c.printf("Update succeeded, current latest version: %s\n", remoteVersion)
		return OutcomeUpgraded
	}
	c.printf("%s(code %d)\n", c.failureMessage(), overall.ExitCode)
	return OutcomeRebuildFailed
}

func (c *Controller) git(dir, label string, args ...string) process.Command {
	return process.Command{Name: c.cfg.GitBin, Args: args, Dir: dir, Label: label}
}

const gitMissingMessage = "This tool requires git, which was not found on this system. Please install it."

func (c *Controller) failureMessage() string {
	return fmt.Sprintf("%s update failed, please retry or update manually", c.cfg.ToolName)
}

func (c *Controller) printFailure() {
	c.printf("%s\n", c.failureMessage())
}

func (c *Controller) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
