// Package watchdog은 부모가 포착 불가능한 시그널(SIGKILL)로 사라졌을 때
// 자식이 고아로 남지 않도록 강제 종료하는 보조 프로세스를 제공합니다.
//
// 보조 프로세스는 같은 바이너리를 마커 환경변수와 함께 재실행한 것입니다.
// main 시작 직후 Init을 호출한 프로그램만 보조 프로세스 역할을 수행할 수
// 있으며, 엔진은 Init이 호출된 경우에만 보조 프로세스를 띄웁니다.
//
// 보조 프로세스 자체가 동시에 죽으면 자식이 살아남을 수 있습니다.
// 이는 최선 노력 안전망이지 보장이 아닙니다.
package watchdog

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

const (
	envChildPID = "FOREGROUND_WATCHDOG_CHILD"
	envGraceMS  = "FOREGROUND_WATCHDOG_GRACE_MS"

	// DefaultGrace는 부모 소멸 후 자식의 자발적 종료를 기다리는 유예 시간입니다.
	DefaultGrace = 500 * time.Millisecond

	// standDown은 부모가 정상 경로로 보조 프로세스를 해제할 때 보내는
	// 상태 바이트입니다. 아무것도 받지 못한 채 파이프가 닫히면 부모가
	// 죽은 것으로 간주합니다.
	standDown byte = '.'

	// pollInterval은 자식 생존 확인 주기입니다.
	pollInterval = 50 * time.Millisecond
)

var registered atomic.Bool

// Init은 이 프로세스를 보조 프로세스 후보로 등록합니다. main에서 가장
// 먼저 호출해야 합니다. 마커 환경변수가 있으면 이 프로세스는 감시 루프를
// 수행한 뒤 종료하며 호출자에게 돌아가지 않습니다.
func Init() {
	registered.Store(true)

	v := os.Getenv(envChildPID)
	if v == "" {
		return
	}
	childPID, err := strconv.Atoi(v)
	if err != nil {
		os.Exit(1)
	}

	grace := DefaultGrace
	if g, err := strconv.Atoi(os.Getenv(envGraceMS)); err == nil && g > 0 {
		grace = time.Duration(g) * time.Millisecond
	}

	watch(os.NewFile(3, "watchdog|parent-pipe"), childPID, grace)
	os.Exit(0)
}

// Enabled는 Init이 호출되어 보조 프로세스를 띄울 수 있는지 확인합니다.
func Enabled() bool {
	return registered.Load()
}

// Spawn은 자식 PID를 감시하는 보조 프로세스를 분리 세션으로 시작합니다.
// 반환된 stop은 보조 프로세스를 정상 해제하며 두 번 호출해도 안전합니다.
// 부모가 해제 없이 죽으면 (SIGKILL 포함) 파이프가 커널에 의해 닫혀
// 보조 프로세스가 자식 정리를 시작합니다.
func Spawn(childPID int, grace time.Duration) (stop func(), err error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("실행 파일 경로 확인 실패: %w", err)
	}
	if grace <= 0 {
		grace = DefaultGrace
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("감시 파이프 생성 실패: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", envChildPID, childPID),
		fmt.Sprintf("%s=%d", envGraceMS, grace.Milliseconds()),
	)
	cmd.ExtraFiles = []*os.File{r} // 보조 프로세스의 fd 3
	cmd.SysProcAttr = helperSysProcAttr()

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("감시 프로세스 시작 실패: %w", err)
	}
	r.Close()

	// 좀비 방지
	go func() { _ = cmd.Wait() }()

	var once sync.Once
	return func() {
		once.Do(func() {
			_, _ = w.Write([]byte{standDown})
			_ = w.Close()
		})
	}, nil
}

// watch는 보조 프로세스의 감시 루프입니다. 부모의 정상 해제 신호를 받으면
// 그대로 끝나고, 파이프 EOF(부모 소멸)나 SIGHUP을 받으면 자식을 정리합니다.
func watch(pipe *os.File, childPID int, grace time.Duration) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, unix.SIGHUP)
	defer signal.Stop(hup)

	released := make(chan bool, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := pipe.Read(buf)
			if n > 0 && buf[0] == standDown {
				released <- true
				return
			}
			if err != nil {
				released <- false
				return
			}
		}
	}()

	select {
	case ok := <-released:
		if ok {
			return
		}
	case <-hup:
	}
	reap(childPID, grace)
}

// reap은 유예 시간 동안 자식의 자발적 종료를 기다린 뒤 강제 종료합니다.
func reap(childPID int, grace time.Duration) {
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !alive(childPID) {
			return
		}
		time.Sleep(pollInterval)
	}
	if alive(childPID) {
		_ = unix.Kill(childPID, unix.SIGKILL)
	}
}

// alive는 시그널 0으로 프로세스 존재를 확인합니다.
func alive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
