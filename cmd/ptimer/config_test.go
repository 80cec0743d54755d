package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kioto95/ptimer/cmd/ptimer/execute"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configFileEnvVar, statsEnvVar, timeoutEnvVar, delimiterEnvVar, debugEnvVar} {
		t.Setenv(key, "")
	}
}

func TestReadTimeout(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint32
		wantErr bool
	}{
		{"", defaultTimeoutMs, false},
		{"0", execute.EffectivelyUnlimitedMs, false},
		{"1", 1, false},
		{"1500", 1500, false},
		{"99999", 99999, false},
		{"100000", 0, true},
		{"0123", 0, true},
		{"00", 0, true},
		{"12a", 0, true},
		{"-5", 0, true},
		{" 15", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := readTimeout(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readTimeout(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("readTimeout(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsShortDigitStr(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want bool
	}{
		{"12345", 5, true},
		{"123456", 5, false},
		{"", 5, false},
		{"12x45", 5, false},
		{"7", 1, true},
	}

	for _, tt := range tests {
		if got := isShortDigitStr(tt.s, tt.max); got != tt.want {
			t.Errorf("isShortDigitStr(%q, %d) = %v, want %v", tt.s, tt.max, got, tt.want)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(timeoutEnvVar, "2500")
	t.Setenv(statsEnvVar, "stats.log")
	t.Setenv(delimiterEnvVar, "###")

	config, err := loadConfig([]string{"-v", "/bin/echo", "-n", "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(config.Command, " "), "/bin/echo -n hello"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
	if config.TimeoutMs != 2500 {
		t.Errorf("timeout = %d, want 2500", config.TimeoutMs)
	}
	if config.StatsPath != "stats.log" || config.Delimiter != "###" {
		t.Errorf("stats = %q, delimiter = %q", config.StatsPath, config.Delimiter)
	}
	if !config.Verbose {
		t.Error("verbose flag not applied")
	}
}

func TestLoadConfigNoCommand(t *testing.T) {
	clearConfigEnv(t)
	if _, err := loadConfig([]string{"-v"}); err == nil {
		t.Error("expected an error when no program is given")
	}
	if _, err := loadConfig(nil); err == nil {
		t.Error("expected an error on an empty command line")
	}
}

func TestLoadConfigUnknownOption(t *testing.T) {
	clearConfigEnv(t)
	if _, err := loadConfig([]string{"-x", "/bin/true"}); err == nil {
		t.Error("expected an error for an unrecognized option")
	}
}

func TestLoadConfigRejectsLongDelimiter(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(delimiterEnvVar, strings.Repeat("=", 20))
	if _, err := loadConfig([]string{"/bin/true"}); err == nil {
		t.Error("expected an error for a delimiter of 20 or more characters")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"command": ["/bin/sleep", "1"], "timeout_ms": 3000, "stats": "out.json", "delimiter": "--"}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFileEnvVar, path)

	config, err := loadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(config.Command, " "), "/bin/sleep 1"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
	if config.TimeoutMs != 3000 {
		t.Errorf("timeout = %d, want 3000", config.TimeoutMs)
	}
	if config.StatsPath != "out.json" || config.Delimiter != "--" {
		t.Errorf("stats = %q, delimiter = %q", config.StatsPath, config.Delimiter)
	}
}

func TestLoadConfigFileZeroTimeoutMeansUnlimited(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"command": ["/bin/true"], "timeout_ms": 0}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFileEnvVar, path)

	config, err := loadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if config.TimeoutMs != execute.EffectivelyUnlimitedMs {
		t.Errorf("timeout = %d, want the unlimited value", config.TimeoutMs)
	}
}

func TestLoadConfigFileAbsentTimeoutUsesDefault(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"command": ["/bin/true"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFileEnvVar, path)

	config, err := loadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if config.TimeoutMs != defaultTimeoutMs {
		t.Errorf("timeout = %d, want the default %d", config.TimeoutMs, defaultTimeoutMs)
	}
}

func TestLoadConfigFileMissingCommand(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"timeout_ms": 100}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configFileEnvVar, path)

	if _, err := loadConfig(nil); err == nil {
		t.Error("expected a validation error for a config file without a command")
	}
}
