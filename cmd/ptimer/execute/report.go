package execute

import (
	"syscall"

	"github.com/kioto95/ptimer/cmd/ptimer/entities"
	"golang.org/x/sys/unix"
)

// Sentinel signals. The timeout sentinel is delivered by the ITIMER_PROF
// budget armed in the child; the abort sentinel is raised by the child
// bootstrap when it fails before replacing its image. Sentinel checks take
// precedence over generic signal classification, so a supervised command
// that raises one of these on itself is misclassified as the corresponding
// internal condition. That ambiguity is accepted and documented, not papered
// over.
const (
	timeoutSignal = unix.SIGPROF
	abortSignal   = unix.SIGQUIT
)

type usageReportProps struct {
	pid      int
	budgetMs uint32
	status   syscall.WaitStatus
	rusage   *unix.Rusage
}

func makeUsageReport(props *usageReportProps) *entities.UsageReport {
	userMs := timevalToMs(props.rusage.Utime)
	sysMs := timevalToMs(props.rusage.Stime)

	return &entities.UsageReport{
		Pid: props.pid,
		// ru_maxrss is in KiB on Linux.
		MaxRssKb: int64(props.rusage.Maxrss),
		Exit:     classifyWait(props.status, props.budgetMs),
		Times: entities.TimesMs{
			Total: userMs + sysMs,
			User:  userMs,
			Sys:   sysMs,
		},
	}
}

// classifyWait maps a raw wait status to exactly one ExitKind. Only this
// layer knows which signal numbers implement the timeout and abort
// meanings; everything above sees the kinds.
func classifyWait(status syscall.WaitStatus, budgetMs uint32) entities.ExitInfo {
	switch {
	case status.Exited():
		code := int64(status.ExitStatus())
		return entities.ExitInfo{Type: entities.ExitReturned, Repr: &code, Desc: "exit code"}

	case status.Signaled():
		sig := status.Signal()
		switch sig {
		case timeoutSignal:
			// The report carries the configured budget, not the signal number.
			budget := int64(budgetMs)
			return entities.ExitInfo{Type: entities.ExitTimedOut, Repr: &budget, Desc: "child runtime limit (ms)"}
		case abortSignal:
			return entities.ExitInfo{Type: entities.ExitSelfAborted, Desc: "child error before exec"}
		default:
			num := int64(sig)
			return entities.ExitInfo{Type: entities.ExitSignaled, Repr: &num, Desc: sig.String()}
		}

	default:
		return entities.ExitInfo{Type: entities.ExitUnknown, Desc: "unknown"}
	}
}

func timevalToMs(tv unix.Timeval) float64 {
	return float64(tv.Sec)*1000.0 + float64(tv.Usec)/1000.0
}
