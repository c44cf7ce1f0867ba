// Package foreground는 자식 프로세스를 현재 프로세스처럼 동작하게 만드는
// 프록시 엔진입니다. 자식은 부모의 표준 입출력을 물려받고, 부모가 받는
// 모든 중계 가능 시그널을 전달받으며, 부모의 IPC 채널을 대신 사용하고,
// 자식이 종료되면 부모도 같은 방식(같은 코드 또는 같은 시그널)으로
// 종료됩니다. 런처 프로그램이 시그널/스트림 중계와 마지막 정리 훅 실행
// 동안만 살아있다가 자식에게 제어를 완전히 위임할 때 사용합니다.
//
// 포착 불가능한 SIGKILL로 부모가 사라지는 경우는 watchdog 보조 프로세스가
// 최선 노력으로 자식을 정리합니다.
package foreground

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/insajin/foreground/internal/host"
	"github.com/insajin/foreground/internal/ipc"
	"github.com/insajin/foreground/internal/logger"
	"github.com/insajin/foreground/internal/relay"
	"github.com/insajin/foreground/internal/stdio"
	"github.com/insajin/foreground/internal/watchdog"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Child는 프록시 중인 자식 프로세스 핸들입니다. 생성부터 종료 이벤트까지
// 엔진이 소유합니다.
type Child struct {
	cmd    *exec.Cmd
	parent host.Process
	conn   *ipc.Conn // 자식 IPC 채널의 부모 쪽 끝 (없으면 nil)

	done   chan struct{}
	action *CloseAction // done이 닫힌 뒤에만 읽기

	log zerolog.Logger
}

// PID는 자식의 프로세스 ID를 반환합니다.
func (c *Child) PID() int {
	return c.cmd.Process.Pid
}

// Kill은 자식에게 시그널을 보냅니다.
func (c *Child) Kill(sig os.Signal) error {
	return c.cmd.Process.Signal(sig)
}

// IPC는 자식과의 메시지 채널을 반환합니다. 채널이 없으면 nil입니다.
func (c *Child) IPC() *ipc.Conn {
	return c.conn
}

// Done은 자식 종료 처리가 끝나면 닫히는 채널을 반환합니다.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// Wait는 자식이 종료되고 모든 릴레이가 해제될 때까지 기다린 뒤 최종
// CloseAction을 반환합니다. OnClose 훅이 설정된 경우 훅 처리까지 끝난
// 결과입니다.
func (c *Child) Wait(ctx context.Context) (*CloseAction, error) {
	select {
	case <-c.done:
		return c.action, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start는 자식 프로세스를 생성하고 부모와 배선합니다. 프로세스 생성
// 실패는 재시도 없이 즉시 반환됩니다. 반환 시점에 자식은 실행 중이며
// 시그널/스트림/메시지 릴레이가 연결되어 있습니다.
func Start(program string, args []string, opts *Options) (*Child, error) {
	return start(program, args, opts.engine())
}

// start는 현대/구 진입점 공통의 엔진입니다.
// 상태는 생성 → 중계 → 종료 처리 → 완료 순으로만 진행합니다.
func start(program string, args []string, e *engineOptions) (*Child, error) {
	parent := e.parent
	modes := stdio.Policy(e.stdio, parent.IPC() != nil)

	cmd := exec.Command(program, args...)
	cmd.Dir = e.dir
	if e.env != nil {
		cmd.Env = e.env
	}

	ends, conn, childFiles, err := wireStdio(cmd, parent, modes)
	if err != nil {
		// 중간에 실패해도 이미 만들어진 디스크립터는 모두 회수
		cleanupWiring(ends, conn, childFiles)
		return nil, err
	}

	if err := e.spawn(cmd); err != nil {
		cleanupWiring(ends, conn, childFiles)
		return nil, fmt.Errorf("자식 프로세스 %q 시작 실패: %w", program, err)
	}
	// 자식 쪽 끝은 자식이 복제본을 가지므로 부모에서 닫음
	for _, f := range childFiles {
		f.Close()
	}

	c := &Child{
		cmd:    cmd,
		parent: parent,
		conn:   conn,
		done:   make(chan struct{}),
		log: logger.WithRunID(uuid.NewString()).With().
			Str("program", program).
			Int("pid", cmd.Process.Pid).
			Logger(),
	}
	c.log.Debug().Strs("args", args).Msg("[foreground] 자식 프로세스 시작")

	// 중계 연결
	detachSignals := relay.Signals(parent, c)
	detachStreams := func() {}
	if !e.legacy {
		detachStreams = relay.Streams(parent, ends)
	}
	detachMessages := relay.Messages(parent, conn)

	// 부모의 정상 종료 경로에서는 자식에게 SIGHUP을 보냄
	// (SIGKILL로 인한 소멸은 watchdog 담당)
	removeExitHook := parent.OnExit(func() {
		_ = c.Kill(unix.SIGHUP)
	})

	stopWatchdog := func() {}
	if watchdog.Enabled() && !e.noWatchdog {
		if stop, err := watchdog.Spawn(cmd.Process.Pid, e.watchdogGrace); err != nil {
			c.log.Warn().Err(err).Msg("[foreground] 감시 프로세스 시작 실패")
		} else {
			stopWatchdog = stop
		}
	}

	go func() {
		_ = cmd.Wait()
		code, sig := exitStatus(cmd.ProcessState)

		// 종료 처리: 릴레이 해제가 CloseAction 생성보다 항상 먼저다.
		// 해제 순서는 메시지 → 스트림 → 시그널로 고정.
		detachMessages()
		detachStreams()
		detachSignals()
		removeExitHook()
		stopWatchdog()

		c.log.Info().
			Int("exit_code", code).
			Str("signal", signalName(sig)).
			Msg("[foreground] 자식 종료")

		if e.legacy {
			// 구 진입점은 훅 실행 전에 종료 코드를 미리 반영한다.
			if sig != 0 {
				parent.SetExitCode(128 + int(sig))
			} else {
				parent.SetExitCode(code)
			}
		}

		var delay time.Duration
		if parent == host.Sys() {
			delay = e.raiseDelay
		}
		computed := &CloseAction{Code: code, Signal: sig, parent: parent, raiseDelay: delay}

		final := computed
		invoke := false
		switch {
		case e.legacy:
			final, invoke = e.legacyCallback(computed).apply(computed)
		case e.handler != nil:
			final, invoke = e.handler(context.Background(), computed).apply(computed)
		}

		c.action = final
		close(c.done)
		if invoke {
			final.Invoke()
		}
	}()

	return c, nil
}

// wireStdio는 정책이 계산한 모드 목록대로 exec.Cmd의 디스크립터를
// 구성합니다. 반환된 childFiles는 자식 시작 후 부모에서 닫아야 합니다.
func wireStdio(cmd *exec.Cmd, parent host.Process, modes []stdio.Mode) (
	ends relay.StreamEnds, conn *ipc.Conn, childFiles []*os.File, err error,
) {
	for i, m := range modes {
		if m == stdio.IPC {
			pc, cf, perr := ipc.Pair()
			if perr != nil {
				return ends, nil, childFiles, perr
			}
			fd := 3 + len(cmd.ExtraFiles)
			cmd.ExtraFiles = append(cmd.ExtraFiles, cf)
			if cmd.Env == nil {
				cmd.Env = os.Environ()
			}
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%d", ipc.EnvChannelFD, fd))
			conn = pc
			childFiles = append(childFiles, cf)
			continue
		}
		if i > 2 {
			continue
		}

		// 파이프 모드는 exec.Cmd의 내장 파이프 대신 직접 만든 파이프를
		// 사용한다. Wait가 파이프를 닫아버리면 진행 중인 중계 복사와
		// 경합하기 때문에 양쪽 끝의 수명을 엔진이 직접 관리한다.
		switch i {
		case 0:
			switch m {
			case stdio.Inherit:
				cmd.Stdin = parent.Stdin()
			case stdio.Pipe:
				r, w, perr := os.Pipe()
				if perr != nil {
					return ends, conn, childFiles, perr
				}
				cmd.Stdin = r
				childFiles = append(childFiles, r)
				ends.Stdin = w
			}
			// Ignore는 nil 유지 → /dev/null
		case 1:
			switch m {
			case stdio.Inherit:
				cmd.Stdout = parent.Stdout()
			case stdio.Pipe:
				r, w, perr := os.Pipe()
				if perr != nil {
					return ends, conn, childFiles, perr
				}
				cmd.Stdout = w
				childFiles = append(childFiles, w)
				ends.Stdout = r
			}
		case 2:
			switch m {
			case stdio.Inherit:
				cmd.Stderr = parent.Stderr()
			case stdio.Pipe:
				r, w, perr := os.Pipe()
				if perr != nil {
					return ends, conn, childFiles, perr
				}
				cmd.Stderr = w
				childFiles = append(childFiles, w)
				ends.Stderr = r
			}
		}
	}
	return ends, conn, childFiles, nil
}

// cleanupWiring은 배선 중 만들어진 모든 디스크립터를 정리합니다.
// 배선 실패와 생성 실패 양쪽의 공통 회수 경로입니다.
func cleanupWiring(ends relay.StreamEnds, conn *ipc.Conn, childFiles []*os.File) {
	if conn != nil {
		conn.Close()
	}
	for _, f := range childFiles {
		f.Close()
	}
	if ends.Stdout != nil {
		ends.Stdout.Close()
	}
	if ends.Stderr != nil {
		ends.Stderr.Close()
	}
	if ends.Stdin != nil {
		ends.Stdin.Close()
	}
}

// exitStatus는 대기 결과에서 종료 코드와 시그널을 추출합니다.
// 정확히 하나만 유효합니다: 시그널 종료면 (-1, sig), 아니면 (code, 0).
func exitStatus(state *os.ProcessState) (int, syscall.Signal) {
	if state == nil {
		return -1, 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -1, ws.Signal()
	}
	return state.ExitCode(), 0
}

// signalName은 로그용 시그널 이름을 반환합니다.
func signalName(sig syscall.Signal) string {
	if sig == 0 {
		return ""
	}
	return unix.SignalName(sig)
}
