package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/kioto95/ptimer/cmd/ptimer/entities"
	"github.com/kioto95/ptimer/cmd/ptimer/execute"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const usageText = `usage: ptimer [-h] [-v] program [args ...]

ptimer: measure a program's processor time

positional arguments:
    program          path to the inspected program
    args             commandline arguments

optional arguments:
    -h, --help       print this help message and exit
    -v, --verbose    (dev) print verbosely

optional environment variables:
    PTIMER_FILE       JSON file holding the full supervision config
    PTIMER_STATS      file to write stats in JSON, default: (stdout)
    PTIMER_TIMEOUT    processor time limit (ms), 0 for unlimited, default: 1500
    PTIMER_DELIMITER  delimiter encompassing the stats string
    PTIMER_DEBUG      print verbosely
`

func init() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		runtime.GOMAXPROCS(1)
		runtime.LockOSThread()
		execute.RunInit(os.Args[2:])
		panic("Ptimer failed to bootstrap the child")
	}

	if os.Getenv(debugEnvVar) != "" {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.FatalLevel)
	}
	logrus.SetOutput(os.Stderr)
}

func main() {
	config, err := loadConfig(os.Args[1:])
	if err != nil {
		logrus.Fatalf("%v, use '-h' for help", err)
	}

	if config.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.Debugf("stats output: %s", lo.Ternary(config.StatsPath == "", "(stdout)", config.StatsPath))
	logrus.Debugf("timeout (ms): %d%s", config.TimeoutMs,
		lo.Ternary(config.TimeoutMs == execute.EffectivelyUnlimitedMs, " (unlimited)", ""))
	logrus.Debugf("command:      %s", strings.Join(config.Command, " "))

	report, err := execute.Execute(config)
	if err != nil {
		logrus.WithError(err).Fatal("Error supervising the command")
	}

	if err := writeReport(config, report); err != nil {
		logrus.WithError(err).Fatal("Error writing the usage report")
	}
}

// writeReport serializes the report, wraps it in the configured delimiter,
// and writes it to the stats file, or to stdout when no file is configured.
func writeReport(config *entities.SupervisionConfig, report *entities.UsageReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("Error marshalling the report: %w", err)
	}

	output := fmt.Sprintf("%s%s%s\n", config.Delimiter, data, config.Delimiter)

	if config.StatsPath == "" {
		_, err := os.Stdout.WriteString(output)
		return err
	}
	return os.WriteFile(config.StatsPath, []byte(output), 0644)
}
