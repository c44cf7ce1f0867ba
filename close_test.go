package foreground

import (
	"testing"

	"github.com/insajin/foreground/internal/host/hosttest"
	"golang.org/x/sys/unix"
)

func TestCloseAction_InvokeExit(t *testing.T) {
	parent := hosttest.New()
	a := &CloseAction{Code: 5, parent: parent}

	a.Invoke()
	a.Invoke() // 멱등

	if got := parent.Exits(); len(got) != 1 || got[0] != 5 {
		t.Errorf("Exits() = %v, want [5]", got)
	}
	if len(parent.Raised()) != 0 {
		t.Errorf("Raised() = %v, want empty", parent.Raised())
	}
}

func TestCloseAction_InvokeSignal(t *testing.T) {
	parent := hosttest.New()
	a := &CloseAction{Code: -1, Signal: unix.SIGTERM, parent: parent}

	a.Invoke()
	a.Invoke()

	if got := parent.Raised(); len(got) != 1 || got[0] != unix.SIGTERM {
		t.Errorf("Raised() = %v, want [SIGTERM]", got)
	}
	if len(parent.Exits()) != 0 {
		t.Errorf("Exits() = %v, want empty", parent.Exits())
	}
}

func TestCloseAction_Signaled(t *testing.T) {
	if (&CloseAction{Code: 0}).Signaled() {
		t.Error("정상 종료 동작의 Signaled() = true, want false")
	}
	if !(&CloseAction{Code: -1, Signal: unix.SIGINT}).Signaled() {
		t.Error("시그널 종료 동작의 Signaled() = false, want true")
	}
}

func TestDecision_Apply(t *testing.T) {
	parent := hosttest.New()
	computed := &CloseAction{Code: 1, parent: parent}

	tests := []struct {
		name       string
		decision   Decision
		wantInvoke bool
		wantCode   int
		wantSignal bool
	}{
		{"계산된 동작 사용", UseComputed(), true, 1, false},
		{"시그널 재정의", OverrideSignal(unix.SIGTERM), true, -1, true},
		{"코드 재정의", OverrideCode(7), true, 7, false},
		{"종료 억제", Suppress(), false, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, invoke := tt.decision.apply(computed)
			if invoke != tt.wantInvoke {
				t.Errorf("invoke = %v, want %v", invoke, tt.wantInvoke)
			}
			if final.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", final.Code, tt.wantCode)
			}
			if final.Signaled() != tt.wantSignal {
				t.Errorf("Signaled() = %v, want %v", final.Signaled(), tt.wantSignal)
			}
		})
	}
}

func TestOverrideSignalName(t *testing.T) {
	d := OverrideSignalName("SIGTERM")
	if d.kind != decisionOverrideSignal || d.sig != unix.SIGTERM {
		t.Errorf("OverrideSignalName(SIGTERM) = %+v", d)
	}

	// 알 수 없는 이름은 계산된 동작으로 폴백
	d = OverrideSignalName("SIGNOPE")
	if d.kind != decisionUseComputed {
		t.Errorf("OverrideSignalName(알 수 없는 이름) kind = %v, want UseComputed", d.kind)
	}
}

func TestCloseAction_OverrideSignalKeepsDelay(t *testing.T) {
	parent := hosttest.New()
	computed := &CloseAction{Code: 0, parent: parent, raiseDelay: DefaultRaiseDelay}

	final, _ := OverrideSignal(unix.SIGINT).apply(computed)
	if final.raiseDelay != DefaultRaiseDelay {
		t.Errorf("재정의 동작의 raiseDelay = %v, want %v", final.raiseDelay, DefaultRaiseDelay)
	}
}
