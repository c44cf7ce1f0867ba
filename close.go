package foreground

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/insajin/foreground/internal/host"
	"golang.org/x/sys/unix"
)

// DefaultRaiseDelay는 시그널 재발신 전 대기 시간입니다. 부모가 시그널을
// 관측하기 전에 정상 종료 경로로 빠져나가는 경합을 피하기 위한 지연으로,
// 부모가 실제 현재 프로세스일 때만 적용됩니다.
const DefaultRaiseDelay = 200 * time.Millisecond

// CloseAction은 자식의 종료 방식을 부모에 그대로 반영하는 실행 가능한
// 동작입니다. Code와 Signal은 상호 배타적입니다: 자식이 시그널로 죽었으면
// Signal이 설정되고 Code는 -1, 정상 종료했으면 Code가 설정되고 Signal은 0.
type CloseAction struct {
	// Code는 자식의 종료 코드입니다. 시그널 종료면 -1입니다.
	Code int
	// Signal은 자식을 종료시킨 시그널입니다. 정상 종료면 0입니다.
	Signal syscall.Signal

	parent     host.Process
	raiseDelay time.Duration
	once       sync.Once
}

// Signaled는 자식이 시그널로 종료되었는지 확인합니다.
func (a *CloseAction) Signaled() bool {
	return a.Signal != 0
}

// Invoke는 부모를 자식과 같은 방식으로 종료시킵니다. 시그널 종료면 같은
// 시그널을 자신에게 재발신하고, 정상 종료면 같은 코드로 종료합니다.
// 멱등이며 두 번째 호출부터는 아무 일도 하지 않습니다.
func (a *CloseAction) Invoke() {
	a.once.Do(func() {
		if a.Signaled() {
			if a.raiseDelay > 0 {
				time.Sleep(a.raiseDelay)
			}
			_ = a.parent.Raise(a.Signal)
			return
		}
		a.parent.Exit(a.Code)
	})
}

// decisionKind는 CloseHandler의 결정 종류입니다.
type decisionKind int

const (
	decisionUseComputed decisionKind = iota
	decisionOverrideSignal
	decisionOverrideCode
	decisionSuppress
)

// Decision은 CloseHandler가 반환하는 태그드 유니언입니다.
// 계산된 동작 사용 / 시그널 재정의 / 코드 재정의 / 종료 억제 중 하나입니다.
type Decision struct {
	kind decisionKind
	sig  syscall.Signal
	code int
}

// UseComputed는 계산된 동작을 그대로 사용합니다.
func UseComputed() Decision {
	return Decision{kind: decisionUseComputed}
}

// OverrideSignal은 계산된 동작 대신 지정한 시그널을 부모에 재발신합니다.
func OverrideSignal(sig syscall.Signal) Decision {
	return Decision{kind: decisionOverrideSignal, sig: sig}
}

// OverrideSignalName은 시그널 이름("SIGTERM" 등)으로 재정의합니다.
// 알 수 없는 이름이면 계산된 동작을 그대로 사용합니다.
func OverrideSignalName(name string) Decision {
	sig := unix.SignalNum(name)
	if sig == 0 {
		return UseComputed()
	}
	return OverrideSignal(sig)
}

// OverrideCode는 계산된 동작 대신 지정한 코드로 부모를 종료합니다.
func OverrideCode(code int) Decision {
	return Decision{kind: decisionOverrideCode, code: code}
}

// Suppress는 부모 종료를 완전히 취소합니다. 이후 부모 수명주기의 책임은
// 호출자에게 넘어갑니다.
func Suppress() Decision {
	return Decision{kind: decisionSuppress}
}

// CloseHandler는 자식 종료 시 아직 실행되지 않은 CloseAction을 받아
// 최종 처리 방식을 결정하는 사용자 훅입니다. 엔진은 훅이 끝날 때까지
// 기다립니다. 훅에서 발생한 패닉은 복구하지 않습니다 — 정리 훅이 깨진
// 채로 부모가 반영된 종료 상태보다 오래 살아남아서는 안 되기 때문입니다.
type CloseHandler func(ctx context.Context, action *CloseAction) Decision

// apply는 결정을 최종 CloseAction과 실행 여부로 변환합니다.
func (d Decision) apply(computed *CloseAction) (final *CloseAction, invoke bool) {
	switch d.kind {
	case decisionOverrideSignal:
		return &CloseAction{
			Code:       -1,
			Signal:     d.sig,
			parent:     computed.parent,
			raiseDelay: computed.raiseDelay,
		}, true
	case decisionOverrideCode:
		return &CloseAction{Code: d.code, parent: computed.parent}, true
	case decisionSuppress:
		return computed, false
	default:
		return computed, true
	}
}
