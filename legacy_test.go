package foreground

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/insajin/foreground/internal/host"
	"golang.org/x/sys/unix"
)

// 구 진입점은 부모 재정의를 지원하지 않고 항상 실제 현재 프로세스를
// 사용하므로, 테스트는 Suppress 콜백으로 실제 종료를 막고 미리 반영된
// 종료 코드(eager exit code)를 관찰한다.

func TestRun_EagerExitCode(t *testing.T) {
	host.Sys().SetExitCode(0)

	done := make(chan struct{})
	c, err := Run("sh", "-c", "exit 3", func(a *CloseAction) Decision {
		close(done)
		return Suppress()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	<-c.Done()
	<-done

	// 콜백 실행 전에 이미 반영되어 있어야 하지만, 여기서는 최소한
	// 종료 처리 완료 시점의 값을 검증한다
	if got := host.Sys().ExitCode(); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
}

func TestRun_EagerExitCodeFromSignal(t *testing.T) {
	host.Sys().SetExitCode(0)

	c, err := Run("sleep", "60", func(a *CloseAction) Decision {
		return Suppress()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := c.Kill(unix.SIGTERM); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	<-c.Done()

	// SIGTERM = 15 → 128+15
	if got := host.Sys().ExitCode(); got != 143 {
		t.Errorf("ExitCode() = %d, want 143", got)
	}
}

func TestRun_EagerCodeSetBeforeCallback(t *testing.T) {
	host.Sys().SetExitCode(0)

	var observed atomic.Int64
	c, err := Run("sh", "-c", "exit 7", func(a *CloseAction) Decision {
		// 콜백 시점에 이미 반영되어 있어야 함
		observed.Store(int64(host.Sys().ExitCode()))
		return Suppress()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	<-c.Done()

	if observed.Load() != 7 {
		t.Errorf("콜백 시점 ExitCode() = %d, want 7", observed.Load())
	}
}

func TestRun_CallbackReceivesAction(t *testing.T) {
	var code atomic.Int64
	code.Store(-100)

	c, err := Run("sh", []string{"-c", "exit 5"}, func(a *CloseAction) Decision {
		code.Store(int64(a.Code))
		return Suppress()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	<-c.Done()

	if code.Load() != 5 {
		t.Errorf("콜백이 받은 Code = %d, want 5", code.Load())
	}
}

func TestRun_CallbackSynchronousBeforeDone(t *testing.T) {
	var callbackDone atomic.Bool
	c, err := Run("sh", "-c", "exit 0", func(a *CloseAction) Decision {
		time.Sleep(50 * time.Millisecond)
		callbackDone.Store(true)
		return Suppress()
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	<-c.Done()
	if !callbackDone.Load() {
		t.Error("Done()이 콜백 완료 전에 닫힘")
	}
}

func TestNormalizeRunArgs(t *testing.T) {
	cb := func(*CloseAction) Decision { return Suppress() }

	tests := []struct {
		name     string
		rest     []any
		wantArgs []string
		wantErr  bool
	}{
		{"인자 없음", nil, nil, false},
		{"위치 문자열", []any{"-c", "exit 0"}, []string{"-c", "exit 0"}, false},
		{"문자열 슬라이스", []any{[]string{"-l", "/tmp"}}, []string{"-l", "/tmp"}, false},
		{"혼합", []any{"-x", []string{"a", "b"}}, []string{"-x", "a", "b"}, false},
		{"마지막 콜백", []any{"-c", cb}, []string{"-c"}, false},
		{"nil 인자 무시", []any{nil, "-c"}, []string{"-c"}, false},
		{"중간 콜백은 오류", []any{cb, "-c"}, nil, true},
		{"지원하지 않는 타입", []any{42}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, gotCB, err := normalizeRunArgs(tt.rest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if gotCB == nil {
				t.Fatal("콜백이 nil")
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestNormalizeRunArgs_PlainCallback(t *testing.T) {
	called := false
	args, cb, err := normalizeRunArgs([]any{"-c", func(*CloseAction) { called = true }})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(args) != 1 || args[0] != "-c" {
		t.Errorf("args = %v, want [-c]", args)
	}

	// 반환값 없는 콜백은 계산된 동작 사용으로 감싸짐
	d := cb(&CloseAction{})
	if !called {
		t.Error("감싼 콜백이 원본을 호출하지 않음")
	}
	if d.kind != decisionUseComputed {
		t.Errorf("감싼 콜백 결정 = %v, want UseComputed", d.kind)
	}
}
