// Package host는 "현재 프로세스"를 주입 가능한 능력으로 추상화합니다.
// 프록시 엔진은 실제 프로세스를 직접 만지지 않고 이 인터페이스를 통해서만
// 시그널 구독, 스트림, IPC, 종료를 다루므로 테스트에서 가짜 구현으로
// 완전히 대체할 수 있습니다.
package host

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/insajin/foreground/internal/ipc"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Process는 부모 프로세스가 엔진에 제공해야 하는 능력입니다.
type Process interface {
	// PID는 프로세스 ID를 반환합니다.
	PID() int

	// Stdin은 표준 입력 소스입니다.
	Stdin() io.Reader
	// Stdout은 표준 출력 싱크입니다.
	Stdout() io.Writer
	// Stderr는 표준 에러 싱크입니다.
	Stderr() io.Writer

	// Notify는 지정한 시그널 발생 시 ch로 전달하도록 등록합니다.
	Notify(ch chan<- os.Signal, sigs ...os.Signal)
	// Stop은 ch에 대한 모든 시그널 전달을 해제합니다.
	Stop(ch chan<- os.Signal)

	// IPC는 이 프로세스에 상속된 메시지 채널을 반환합니다. 없으면 nil입니다.
	IPC() *ipc.Conn

	// Exit는 등록된 종료 훅을 실행한 뒤 코드와 함께 프로세스를 종료합니다.
	Exit(code int)
	// SetExitCode는 이후 자연 종료 시 사용할 코드를 예약합니다 (즉시 종료하지 않음).
	SetExitCode(code int)
	// ExitCode는 SetExitCode로 예약된 코드를 반환합니다.
	ExitCode() int

	// Raise는 자신에게 시그널을 보냅니다. 기본 처리 방식이 적용되도록
	// 기존 핸들러를 먼저 해제합니다.
	Raise(sig os.Signal) error
	// Kill은 임의 프로세스에 시그널을 보냅니다.
	Kill(pid int, sig os.Signal) error

	// OnExit는 Exit 직전에 실행될 훅을 등록하고 해제 함수를 반환합니다.
	// 해제 함수는 두 번 호출해도 안전합니다.
	OnExit(hook func()) (remove func())
}

// sys는 실제 현재 프로세스 구현입니다.
type sys struct {
	mu       sync.Mutex
	exitCode int
	hooks    map[int]func()
	nextID   int

	ipcOnce sync.Once
	ipcConn *ipc.Conn
}

var system = &sys{hooks: make(map[int]func())}

// Sys는 실제 현재 프로세스 핸들을 반환합니다 (싱글턴).
func Sys() Process { return system }

func (s *sys) PID() int          { return os.Getpid() }
func (s *sys) Stdin() io.Reader  { return os.Stdin }
func (s *sys) Stdout() io.Writer { return os.Stdout }
func (s *sys) Stderr() io.Writer { return os.Stderr }

func (s *sys) Notify(ch chan<- os.Signal, sigs ...os.Signal) {
	signal.Notify(ch, sigs...)
}

func (s *sys) Stop(ch chan<- os.Signal) {
	signal.Stop(ch)
}

// IPC는 환경변수로 상속된 채널을 최초 호출 시 한 번만 탐색합니다.
func (s *sys) IPC() *ipc.Conn {
	s.ipcOnce.Do(func() {
		conn, err := ipc.FromEnv()
		if err != nil {
			log.Warn().Err(err).Msg("상속된 IPC 채널 열기 실패")
			return
		}
		s.ipcConn = conn
	})
	return s.ipcConn
}

func (s *sys) Exit(code int) {
	s.runHooks()
	os.Exit(code)
}

func (s *sys) SetExitCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exitCode = code
}

func (s *sys) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

func (s *sys) Raise(sig os.Signal) error {
	// 기본 처리 방식이 적용되어야 시그널 종료가 부모의 상태에 그대로 반영됩니다.
	signal.Reset(sig)
	return unix.Kill(os.Getpid(), sig.(syscall.Signal))
}

func (s *sys) Kill(pid int, sig os.Signal) error {
	return unix.Kill(pid, sig.(syscall.Signal))
}

func (s *sys) OnExit(hook func()) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.hooks[id] = hook
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.hooks, id)
			s.mu.Unlock()
		})
	}
}

// runHooks는 등록 역순으로 종료 훅을 실행합니다.
func (s *sys) runHooks() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.hooks))
	for id := range s.hooks {
		ids = append(ids, id)
	}
	hooks := make([]func(), 0, len(ids))
	for i := s.nextID - 1; i >= 0 && len(hooks) < len(ids); i-- {
		if h, ok := s.hooks[i]; ok {
			hooks = append(hooks, h)
		}
	}
	s.mu.Unlock()

	for _, h := range hooks {
		h()
	}
}
