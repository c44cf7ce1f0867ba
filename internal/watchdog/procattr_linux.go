package watchdog

import "syscall"

// helperSysProcAttr는 보조 프로세스를 분리 세션으로 띄우고, 부모가
// SIGKILL로 죽어도 커널이 SIGHUP을 전달하도록 Pdeathsig를 설정합니다.
func helperSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setsid:    true,
		Pdeathsig: syscall.SIGHUP,
	}
}
