package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	root       string
	logDir     string
	configPath string
	driveOne   string
	driveTwo   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:  base,
		root:     filepath.Join(base, "shoebox"),
		logDir:   filepath.Join(base, "shoebox", "logs"),
		driveOne: filepath.Join(base, "drive-one"),
		driveTwo: filepath.Join(base, "drive-two"),
	}
	for _, dir := range []string{env.driveOne, env.driveTwo} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir drive %s: %v", dir, err)
		}
	}

	env.configPath = filepath.Join(homeDir, "config.toml")
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
root = %q

[[drives]]
path = %q
label = "alpha"

[[drives]]
path = %q
label = "beta"

[process]
dry_run = false
parallel_jobs = 2
progress_interval = 1

[safety]
min_free_space_gb = 0
`, env.root, env.driveOne, env.driveTwo)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cliArgs := args
	if configPath != "" {
		cliArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(cliArgs)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeDriveFile creates a media fixture under a source drive.
func writeDriveFile(t *testing.T, drive, rel, content string) string {
	t.Helper()
	path := filepath.Join(drive, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
	if info.IsDir() {
		t.Fatalf("expected file at %s, found directory", path)
	}
}

func requireAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}
