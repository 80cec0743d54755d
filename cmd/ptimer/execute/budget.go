package execute

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// EffectivelyUnlimitedMs is the budget meaning "no enforced limit". It is a
// finite value, over 24 days of processor time, kept within a 32-bit signed
// range since itimerval only guarantees 32-bit or narrower integer fields.
const EffectivelyUnlimitedMs uint32 = 0x7FFFFFFF

// budgetEnvVar carries the budget from the supervisor to the child
// bootstrap. It is stripped from the environment before the image
// replacement so the supervised command never sees it.
const budgetEnvVar = "_PTIMER_BUDGET_MS"

// armBudget installs an ITIMER_PROF timer counting down the given budget.
// The timer measures processor time, both user mode and kernel work done on
// the process's behalf, so a descheduled or blocked child does not
// spuriously time out. Expiry delivers SIGPROF. The timer survives the image
// replacement, which is why it is armed here rather than after the exec: the
// budget covers the entire lifetime of the supervised command, including the
// exec itself.
func armBudget(budgetMs uint32) error {
	timer := unix.Itimerval{
		Value: unix.NsecToTimeval(int64(time.Duration(budgetMs) * time.Millisecond)),
	}
	if _, err := unix.Setitimer(unix.ITIMER_PROF, timer); err != nil {
		return fmt.Errorf("Error arming the processor-time budget: %w", err)
	}
	return nil
}
