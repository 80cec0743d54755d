package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kioto95/ptimer/cmd/ptimer/entities"
	"github.com/kioto95/ptimer/cmd/ptimer/execute"
	"github.com/kioto95/ptimer/cmd/ptimer/utils"
	"github.com/mitchellh/mapstructure"
)

const (
	configFileEnvVar = "PTIMER_FILE"
	statsEnvVar      = "PTIMER_STATS"
	timeoutEnvVar    = "PTIMER_TIMEOUT"
	delimiterEnvVar  = "PTIMER_DELIMITER"
	debugEnvVar      = "PTIMER_DEBUG"

	defaultTimeoutMs = 1500
	maxTimeoutDigits = 5
)

var validate = validator.New()

// loadConfig assembles the supervision config from the command line and the
// environment, or from the JSON document named by PTIMER_FILE when that is
// set. Either way the returned config is fully validated and its timeout
// already normalized; the supervisor never sees raw input.
func loadConfig(args []string) (*entities.SupervisionConfig, error) {
	verbose := os.Getenv(debugEnvVar) != ""

	commandStart := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			commandStart = i
			break
		}
		switch arg {
		case "-h", "--help":
			fmt.Print(usageText)
			os.Exit(0)
		case "-v", "--verbose":
			verbose = true
		default:
			return nil, fmt.Errorf("option %q not recognized", arg)
		}
	}

	if file := os.Getenv(configFileEnvVar); file != "" {
		config, err := loadConfigFile(file)
		if err != nil {
			return nil, err
		}
		config.Verbose = config.Verbose || verbose
		return config, nil
	}

	if commandStart < 0 {
		return nil, errors.New("program name expected")
	}

	timeoutMs, err := readTimeout(os.Getenv(timeoutEnvVar))
	if err != nil {
		return nil, err
	}

	config := &entities.SupervisionConfig{
		Command:   args[commandStart:],
		TimeoutMs: timeoutMs,
		StatsPath: os.Getenv(statsEnvVar),
		Delimiter: os.Getenv(delimiterEnvVar),
		Verbose:   verbose,
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func loadConfigFile(path string) (*entities.SupervisionConfig, error) {
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("config file %q does not exist", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %q: %w", path, err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %q: %w", path, err)
	}

	var config entities.SupervisionConfig
	if err := mapstructure.Decode(payload, &config); err != nil {
		return nil, fmt.Errorf("error decoding config file %q: %w", path, err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// An absent timeout_ms gets the same default as an absent
	// PTIMER_TIMEOUT; only an explicit 0 means unlimited.
	if _, present := payload["timeout_ms"]; !present {
		config.TimeoutMs = defaultTimeoutMs
	} else if config.TimeoutMs == 0 {
		config.TimeoutMs = execute.EffectivelyUnlimitedMs
	}
	return &config, nil
}

// readTimeout applies the raw-input rules: digits only, at most five of
// them, no leading zero. A literal "0" asks for no enforced limit and maps
// to the effectively-unlimited value, so a zero-length timer is never armed.
func readTimeout(raw string) (uint32, error) {
	switch {
	case raw == "":
		return defaultTimeoutMs, nil
	case raw == "0":
		return execute.EffectivelyUnlimitedMs, nil
	case raw[0] != '0' && isShortDigitStr(raw, maxTimeoutDigits):
		ms, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s value %q is not a valid timeout: %w", timeoutEnvVar, raw, err)
		}
		return uint32(ms), nil
	default:
		return 0, fmt.Errorf("%s value %q is led by '0', not pure digits, or too long", timeoutEnvVar, raw)
	}
}

func isShortDigitStr(s string, maxCount int) bool {
	if len(s) == 0 || len(s) > maxCount {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
