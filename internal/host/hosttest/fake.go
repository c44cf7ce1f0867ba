// Package hosttest는 테스트용 가짜 부모 프로세스 구현을 제공합니다.
// 실제 프로세스를 종료하거나 시그널을 보내는 대신 호출 내역을 기록하며,
// 시그널 전달을 테스트 코드에서 직접 주입할 수 있습니다.
package hosttest

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/insajin/foreground/internal/ipc"
)

// Fake는 host.Process의 기록형 구현입니다.
type Fake struct {
	mu sync.Mutex

	pid      int
	stdin    io.Reader
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	conn     *ipc.Conn
	exitCode int

	subs   map[chan<- os.Signal][]os.Signal
	hooks  map[int]func()
	nextID int

	// 기록
	exits  []int
	raised []os.Signal
	kills  []Kill
}

// Kill은 Kill 호출 한 건의 기록입니다.
type Kill struct {
	PID int
	Sig os.Signal
}

// New는 비어있는 가짜 부모를 생성합니다.
func New() *Fake {
	return &Fake{
		pid:   4242,
		stdin: strings.NewReader(""),
		subs:  make(map[chan<- os.Signal][]os.Signal),
		hooks: make(map[int]func()),
	}
}

// SetStdin은 표준 입력 소스를 교체합니다.
func (f *Fake) SetStdin(r io.Reader) { f.stdin = r }

// SetIPC는 부모의 IPC 채널을 설정합니다.
func (f *Fake) SetIPC(c *ipc.Conn) { f.conn = c }

func (f *Fake) PID() int         { return f.pid }
func (f *Fake) Stdin() io.Reader { return f.stdin }

func (f *Fake) Stdout() io.Writer { return &lockedWriter{mu: &f.mu, buf: &f.stdout} }
func (f *Fake) Stderr() io.Writer { return &lockedWriter{mu: &f.mu, buf: &f.stderr} }

// StdoutString은 지금까지 표준 출력에 기록된 내용을 반환합니다.
func (f *Fake) StdoutString() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stdout.String()
}

// StderrString은 지금까지 표준 에러에 기록된 내용을 반환합니다.
func (f *Fake) StderrString() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stderr.String()
}

func (f *Fake) Notify(ch chan<- os.Signal, sigs ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[ch] = append(f.subs[ch], sigs...)
}

func (f *Fake) Stop(ch chan<- os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, ch)
}

// Deliver는 구독 중인 채널에 시그널을 주입합니다 (시그널 수신 시뮬레이션).
func (f *Fake) Deliver(sig os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch, sigs := range f.subs {
		for _, s := range sigs {
			if s == sig {
				select {
				case ch <- sig:
				default:
				}
				break
			}
		}
	}
}

// ListenerCount는 현재 등록된 시그널 구독 채널 수를 반환합니다.
func (f *Fake) ListenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Fake) IPC() *ipc.Conn { return f.conn }

func (f *Fake) Exit(code int) {
	f.RunExitHooks()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits = append(f.exits, code)
}

func (f *Fake) SetExitCode(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exitCode = code
}

func (f *Fake) ExitCode() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exitCode
}

func (f *Fake) Raise(sig os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raised = append(f.raised, sig)
	return nil
}

func (f *Fake) Kill(pid int, sig os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kills = append(f.kills, Kill{PID: pid, Sig: sig})
	return nil
}

func (f *Fake) OnExit(hook func()) (remove func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.hooks[id] = hook
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.hooks, id)
			f.mu.Unlock()
		})
	}
}

// RunExitHooks는 부모의 "곧 종료" 알림을 시뮬레이션합니다.
func (f *Fake) RunExitHooks() {
	f.mu.Lock()
	hooks := make([]func(), 0, len(f.hooks))
	for _, h := range f.hooks {
		hooks = append(hooks, h)
	}
	f.mu.Unlock()
	for _, h := range hooks {
		h()
	}
}

// HookCount는 등록된 종료 훅 수를 반환합니다.
func (f *Fake) HookCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hooks)
}

// Exits는 기록된 Exit 호출 코드 목록을 반환합니다.
func (f *Fake) Exits() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.exits...)
}

// Raised는 기록된 Raise 호출 시그널 목록을 반환합니다.
func (f *Fake) Raised() []os.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]os.Signal(nil), f.raised...)
}

// Kills는 기록된 Kill 호출 목록을 반환합니다.
func (f *Fake) Kills() []Kill {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Kill(nil), f.kills...)
}

// lockedWriter는 버퍼 접근을 뮤텍스로 보호합니다.
type lockedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
