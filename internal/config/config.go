package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Setting keys, as written in settings.yaml. Environment variables use the SR_ prefix
// with dots and dashes replaced by underscores (SR_UPGRADE_GIT_BIN).
const (
	// KeyRepositoryURL is the remote cloned by the upgrade flow.
	KeyRepositoryURL = "repository.url"
	// KeyGitBin is the git executable used to sync the repository.
	KeyGitBin = "upgrade.git-bin"
	// KeyPackageManager runs the install, build and link steps.
	KeyPackageManager = "upgrade.package-manager"
	// KeySkipUpgradeCheck disables the implicit check before each command.
	KeySkipUpgradeCheck = "skip-upgrade-check"
	// KeyDebug turns on the debug log in the global dir.
	KeyDebug = "debug"
	// KeyGlobalDir overrides the global dir (~/.superrename).
	KeyGlobalDir = "global-dir"
)

const (
	// ToolName is the name the tool is published and installed under.
	ToolName = "superrename"
	// SettingsFileName is the settings file kept next to config.json in the global dir.
	SettingsFileName = "settings.yaml"

	envPrefix = "SR"
)

// DefaultRepositoryURL is the remote the upgrade flow clones. Injected at build time via ldflags.
var DefaultRepositoryURL = "http://git.luochenxun.com/SuperRename/superrename.git"

type initSettings struct {
	userConfigPath string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithUserConfig overrides the default user settings path.
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

var (
	configOnce sync.Once
	configMu   sync.RWMutex
	configInst *viper.Viper
	initErr    error
)

// Initialize loads configuration using the precedence:
// defaults < user settings file < environment variables < overrides.
func Initialize(opts ...Option) error {
	configOnce.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		initErr = configure(&settings)
	})
	return initErr
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	if err := Initialize(); err != nil {
		return err
	}
	configMu.Lock()
	defer configMu.Unlock()
	if configInst == nil {
		return fmt.Errorf("configuration not initialized")
	}
	for k, v := range overrides {
		configInst.Set(k, v)
	}
	return nil
}

// GetString fetches a string configuration value, initializing on demand.
func GetString(key string) string {
	v, err := getViper()
	if err != nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool fetches a bool configuration value, initializing on demand.
func GetBool(key string) bool {
	v, err := getViper()
	if err != nil {
		return false
	}
	return v.GetBool(key)
}

// GlobalDir returns the tool's global directory, <home>/.superrename unless overridden.
func GlobalDir() (string, error) {
	if dir := strings.TrimSpace(GetString(KeyGlobalDir)); dir != "" {
		return dir, nil
	}
	return defaultGlobalDir()
}

func configure(settings *initSettings) error {
	userConfigPath := strings.TrimSpace(settings.userConfigPath)
	if userConfigPath == "" {
		path, err := defaultUserConfigPath()
		if err != nil {
			return err
		}
		userConfigPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, userConfigPath); err != nil {
		return fmt.Errorf("load user settings: %w", err)
	}

	configMu.Lock()
	defer configMu.Unlock()
	configInst = v
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("settings path %s is a directory", path)
	}
	//nolint:gosec // G304: Config loader intentionally reads the user settings file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func defaultGlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, "."+ToolName), nil
}

func defaultUserConfigPath() (string, error) {
	dir, err := defaultGlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyRepositoryURL, DefaultRepositoryURL)
	v.SetDefault(KeyGitBin, "git")
	v.SetDefault(KeyPackageManager, "npm")
	v.SetDefault(KeySkipUpgradeCheck, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyGlobalDir, "")
}

func getViper() (*viper.Viper, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	configMu.RLock()
	defer configMu.RUnlock()
	if configInst == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return configInst, nil
}

// reset clears package state for tests.
func reset() {
	configMu.Lock()
	defer configMu.Unlock()
	configInst = nil
	initErr = nil
	configOnce = sync.Once{}
}
