package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	wd := t.TempDir()
	cfg, err := load(flag.NewFlagSet("test", flag.ContinueOnError), nil, locations{workDir: wd, getenv: noEnv})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if want := filepath.Join(wd, DefaultOutputsDir); cfg.OutputsDir != want {
		t.Errorf("OutputsDir: got %q, want %q", cfg.OutputsDir, want)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
	for _, f := range Fields() {
		if cfg.Sources[f] != SourceDefault {
			t.Errorf("Sources[%s]: got %q, want default", f, cfg.Sources[f])
		}
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files: got %v, want none", cfg.Files)
	}
}

func TestPriorityOrder(t *testing.T) {
	wd := t.TempDir()
	userFile := filepath.Join(t.TempDir(), "archmap.toml")
	writeFile(t, userFile, "outputs_dir = \"user-out\"\nlog_level = \"warn\"\nlog_format = \"json\"\n")
	writeFile(t, filepath.Join(wd, "archmap.toml"), "outputs_dir = \"project-out\"\nlog_level = \"error\"\n")

	env := envMap(map[string]string{EnvLogLevel: "debug", EnvLogTimestamps: "true"})
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := load(fs, []string{"--outputs", "/abs/flag-out", "add", "--name", "x"}, locations{userFile: userFile, workDir: wd, getenv: env})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		field      string
		wantValue  string
		wantSource Source
	}{
		{"outputs_dir", "/abs/flag-out", SourceFlag},
		{"log_level", "debug", SourceEnv},
		{"log_format", "json", SourceUserFile},
		{"log_timestamps", "true", SourceEnv},
	}
	for _, tt := range tests {
		if got := cfg.Value(tt.field); got != tt.wantValue {
			t.Errorf("%s: got %q, want %q", tt.field, got, tt.wantValue)
		}
		if got := cfg.Sources[tt.field]; got != tt.wantSource {
			t.Errorf("%s source: got %q, want %q", tt.field, got, tt.wantSource)
		}
	}

	if len(cfg.Files) != 2 {
		t.Errorf("Files: got %v, want user and project files", cfg.Files)
	}
	if rest := fs.Args(); len(rest) != 3 || rest[0] != "add" {
		t.Errorf("remaining args: got %v", rest)
	}
}

func TestProjectFileRelativeOutputs(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, filepath.Join(wd, ".archmap.toml"), "outputs_dir = \"docs/arch\"\n")

	cfg, err := load(nil, nil, locations{workDir: wd, getenv: noEnv})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if want := filepath.Join(wd, "docs", "arch"); cfg.OutputsDir != want {
		t.Errorf("OutputsDir: got %q, want %q", cfg.OutputsDir, want)
	}
	if cfg.Sources["outputs_dir"] != SourceProjFile {
		t.Errorf("source: got %q, want project file", cfg.Sources["outputs_dir"])
	}
}

func TestUnknownConfigKey(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, filepath.Join(wd, "archmap.toml"), "output_dir = \"typo\"\n")

	_, err := load(nil, nil, locations{workDir: wd, getenv: noEnv})
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if !strings.Contains(err.Error(), "output_dir") {
		t.Errorf("error should name the key, got %v", err)
	}
}

func TestMalformedConfigFile(t *testing.T) {
	wd := t.TempDir()
	writeFile(t, filepath.Join(wd, "archmap.toml"), "outputs_dir = \n")

	if _, err := load(nil, nil, locations{workDir: wd, getenv: noEnv}); err == nil {
		t.Fatal("expected TOML parse error, got nil")
	}
}

func TestInvalidEnvBool(t *testing.T) {
	env := envMap(map[string]string{EnvLogTimestamps: "sometimes"})
	if _, err := load(nil, nil, locations{workDir: t.TempDir(), getenv: env}); err == nil {
		t.Fatal("expected error for invalid boolean, got nil")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("ARCHMAP_TEST_DIR", "/tmp/from-env")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/outputs", filepath.Join(home, "outputs")},
		{"$ARCHMAP_TEST_DIR/out", "/tmp/from-env/out"},
		{"relative/dir", "relative/dir"},
		{"~user/dir", "~user/dir"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}
