package execute

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/kioto95/ptimer/cmd/ptimer/entities"
	"github.com/kioto95/ptimer/cmd/ptimer/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Execute supervises one execution of the configured command. It re-execs
// the current binary with the "init" dispatch argument; that child arms the
// processor-time budget and replaces its image with the command, so the
// budget is in force for the command's whole lifetime. The parent then
// blocks on the single wait, reads the child's resource usage, and
// classifies the termination.
//
// The wait itself has no timeout. The budget is the only bound on the run,
// and because it measures processor time rather than wall-clock time, a
// child that sleeps or blocks on I/O indefinitely is not bounded at all.
// That is a deliberate property of the design, not an oversight.
//
// A returned error means the supervision itself failed; every classified
// child outcome, including timeout and signal terminations, is a successful
// supervision that yields a report.
func Execute(config *entities.SupervisionConfig) (*entities.UsageReport, error) {
	child := exec.Cmd{
		Path:   "/proc/self/exe",
		Args:   append([]string{"ptimer", "init"}, config.Command...),
		Env:    append(os.Environ(), fmt.Sprintf("%s=%d", budgetEnvVar, config.TimeoutMs)),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	if err := child.Start(); err != nil {
		return nil, fmt.Errorf("Error spawning the child process: %w", err)
	}

	pid := child.Process.Pid
	logrus.Debugf("supervision %s: child spawned, pid %d", utils.InstanceId, pid)

	if err := child.Wait(); err != nil {
		// An ExitError only says the child did not exit 0; classification
		// below decides what actually happened. Anything else means the wait
		// itself failed.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("Error waiting for the child process: %w", err)
		}
	}

	status, ok := child.ProcessState.Sys().(syscall.WaitStatus)
	if !ok {
		return nil, fmt.Errorf("Unsupported wait status type %T", child.ProcessState.Sys())
	}

	// RUSAGE_CHILDREN accounting is cumulative over all reaped children of
	// this process, not per pid, so it is read exactly once, immediately
	// after the only child has been reaped.
	var rusage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &rusage); err != nil {
		return nil, fmt.Errorf("Error retrieving child resource usage: %w", err)
	}

	report := makeUsageReport(&usageReportProps{
		pid:      pid,
		budgetMs: config.TimeoutMs,
		status:   status,
		rusage:   &rusage,
	})

	logrus.Debugf("supervision %s: child %d terminated, %s", utils.InstanceId, pid, report.Exit.Type)
	return report, nil
}
