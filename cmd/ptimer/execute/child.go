package execute

import (
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// RunInit runs in the spawned child, dispatched from main's init branch. It
// arms the processor-time budget, then replaces the process image with the
// supervised command. It never returns: on success the image is gone, and
// every fallible step short-circuits to abort, which raises the pre-exec
// sentinel so the parent can tell a bootstrap failure apart from anything
// the supervised command did itself.
func RunInit(command []string) {
	if os.Getenv("PTIMER_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	logrus.SetOutput(os.Stderr)

	if len(command) == 0 {
		logrus.Error("No command passed to the child bootstrap")
		abort()
	}

	rawBudget := os.Getenv(budgetEnvVar)
	budgetMs, err := strconv.ParseUint(rawBudget, 10, 32)
	if err != nil {
		logrus.WithError(err).Errorf("Invalid budget %q passed to the child bootstrap", rawBudget)
		abort()
	}

	if err := armBudget(uint32(budgetMs)); err != nil {
		logrus.WithError(err).Error("Error arming the budget in the child")
		abort()
	}
	logrus.Debugf("budget armed, %d ms", budgetMs)

	path, err := exec.LookPath(command[0])
	if err != nil {
		logrus.WithError(err).Errorf("Error resolving the command %q", command[0])
		abort()
	}

	if err := unix.Exec(path, command, environWithout(budgetEnvVar)); err != nil {
		logrus.WithError(err).Errorf("Error replacing the child image with %q", path)
	}
	abort()
}

// The kernel sigaction layout; a zero value is SIG_DFL with an empty mask.
type sigactiont struct {
	handler  uintptr
	flags    uintptr
	restorer uintptr
	mask     uint64
}

// abort raises the pre-exec sentinel on the current process so the parent
// observes a signaled wait status, never an exit code a supervised command
// could also produce. The Go runtime keeps its own SIGQUIT handler installed
// (os/signal.Reset only undoes Notify), and that handler turns the signal
// into a state dump plus exit(2), so the default disposition has to be
// restored with a raw rt_sigaction before the raise.
func abort() {
	signal.Reset(abortSignal)

	var act sigactiont
	_, _, _ = syscall.RawSyscall6(unix.SYS_RT_SIGACTION, uintptr(abortSignal),
		uintptr(unsafe.Pointer(&act)), 0, 8, 0, 0)

	_ = unix.Kill(unix.Getpid(), abortSignal)
	// Unreachable unless signal delivery itself failed.
	os.Exit(1)
}

func environWithout(key string) []string {
	prefix := key + "="
	env := os.Environ()
	kept := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			kept = append(kept, kv)
		}
	}
	return kept
}
