package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithUserConfig(filepath.Join(tmp, "missing.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyRepositoryURL); got != DefaultRepositoryURL {
		t.Fatalf("expected default %s to be %q, got %q", KeyRepositoryURL, DefaultRepositoryURL, got)
	}
	if got := GetString(KeyGitBin); got != "git" {
		t.Fatalf("expected default %s to be git, got %q", KeyGitBin, got)
	}
	if got := GetString(KeyPackageManager); got != "npm" {
		t.Fatalf("expected default %s to be npm, got %q", KeyPackageManager, got)
	}
	if GetBool(KeySkipUpgradeCheck) {
		t.Fatalf("expected default %s to be false", KeySkipUpgradeCheck)
	}
	if GetBool(KeyDebug) {
		t.Fatalf("expected default %s to be false", KeyDebug)
	}
}

func TestUserSettingsOverrideDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, SettingsFileName)
	writeFile(t, userCfg, `
repository:
  url: https://example.com/mirror.git
upgrade:
  package-manager: pnpm
debug: true
`)

	if err := Initialize(WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyRepositoryURL); got != "https://example.com/mirror.git" {
		t.Fatalf("expected settings file to win for %s, got %q", KeyRepositoryURL, got)
	}
	if got := GetString(KeyPackageManager); got != "pnpm" {
		t.Fatalf("expected settings file to win for %s, got %q", KeyPackageManager, got)
	}
	if !GetBool(KeyDebug) {
		t.Fatalf("expected %s to be true from settings file", KeyDebug)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, SettingsFileName)
	writeFile(t, userCfg, `
skip-upgrade-check: false
global-dir: /from/file
`)

	t.Setenv("SR_SKIP_UPGRADE_CHECK", "true")
	t.Setenv("SR_GLOBAL_DIR", "/from/env")

	if err := Initialize(WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if !GetBool(KeySkipUpgradeCheck) {
		t.Fatalf("expected environment variable to override %s", KeySkipUpgradeCheck)
	}
	dir, err := GlobalDir()
	if err != nil {
		t.Fatalf("GlobalDir returned error: %v", err)
	}
	if dir != "/from/env" {
		t.Fatalf("expected env override for global dir, got %q", dir)
	}

	if err := ApplyOverrides(map[string]any{KeySkipUpgradeCheck: false}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if GetBool(KeySkipUpgradeCheck) {
		t.Fatalf("expected override to set %s=false", KeySkipUpgradeCheck)
	}
}

func TestGlobalDirDefaultsToHome(t *testing.T) {
	reset()
	t.Cleanup(reset)

	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := Initialize(WithUserConfig(filepath.Join(home, "none.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	dir, err := GlobalDir()
	if err != nil {
		t.Fatalf("GlobalDir returned error: %v", err)
	}
	if want := filepath.Join(home, ".superrename"); dir != want {
		t.Fatalf("GlobalDir = %q, want %q", dir, want)
	}
}

func TestInitializeRejectsMalformedSettings(t *testing.T) {
	reset()
	t.Cleanup(reset)

	userCfg := filepath.Join(t.TempDir(), SettingsFileName)
	writeFile(t, userCfg, "repository: [unterminated\n")

	if err := Initialize(WithUserConfig(userCfg)); err == nil {
		t.Fatal("expected parse error for malformed settings")
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
