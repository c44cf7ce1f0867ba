//go:build !windows

package relay

import (
	"os"

	"golang.org/x/sys/unix"
)

// ForwardedSignals는 자식에게 중계하는 시그널 집합입니다.
// 제외 대상:
//   - SIGKILL, SIGSTOP: 포착 불가
//   - SIGCHLD: 자식 종료 감시에 필요 (os/exec가 사용)
//   - SIGURG: Go 런타임이 고루틴 선점에 사용
//   - SIGSEGV, SIGBUS, SIGFPE, SIGILL: 동기 폴트, 중계 의미 없음
var ForwardedSignals = []os.Signal{
	unix.SIGHUP,
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTRAP,
	unix.SIGABRT,
	unix.SIGALRM,
	unix.SIGTERM,
	unix.SIGCONT,
	unix.SIGTSTP,
	unix.SIGTTIN,
	unix.SIGTTOU,
	unix.SIGUSR1,
	unix.SIGUSR2,
	unix.SIGPIPE,
	unix.SIGWINCH,
	unix.SIGVTALRM,
	unix.SIGPROF,
	unix.SIGXCPU,
	unix.SIGXFSZ,
	unix.SIGSYS,
}
