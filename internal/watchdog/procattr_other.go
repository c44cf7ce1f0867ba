//go:build !linux && !windows

package watchdog

import "syscall"

// helperSysProcAttr는 보조 프로세스를 분리 세션으로 띄웁니다.
// Pdeathsig가 없는 플랫폼에서는 파이프 EOF로만 부모 소멸을 감지합니다.
func helperSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
