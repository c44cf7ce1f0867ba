package foreground

import (
	"os/exec"
	"time"

	"github.com/insajin/foreground/internal/host"
	"github.com/insajin/foreground/internal/stdio"
	"github.com/insajin/foreground/internal/watchdog"
)

// SpawnFunc는 프로세스 생성 함수입니다. 기본값은 (*exec.Cmd).Start이며
// 테스트에서 생성 과정을 가로채는 용도로 교체할 수 있습니다.
type SpawnFunc func(cmd *exec.Cmd) error

// Options는 Start의 설정입니다. 영 값이면 전부 기본값이 적용됩니다.
type Options struct {
	// Parent는 부모 프로세스 핸들입니다. 기본값은 실제 현재 프로세스입니다.
	Parent host.Process
	// Spawn은 프로세스 생성 함수 재정의입니다.
	Spawn SpawnFunc
	// Dir은 자식의 작업 디렉토리입니다.
	Dir string
	// Env는 자식의 환경변수입니다. nil이면 부모 환경을 그대로 물려받습니다.
	Env []string
	// Stdio는 디스크립터 구성입니다. 비어있으면 inherit입니다 —
	// 일반적인 프로세스 생성 라이브러리의 파이프 기본값과 다릅니다.
	Stdio stdio.Spec
	// OnClose는 자식 종료 시 실행할 훅입니다. 설정하면 엔진이 훅의 결정에
	// 따라 CloseAction을 직접 실행합니다 (Suppress 제외). 설정하지 않으면
	// 실행 책임이 호출자에게 남습니다.
	OnClose CloseHandler
	// NoWatchdog은 고아 방지 감시 프로세스를 끕니다.
	NoWatchdog bool
	// WatchdogGrace는 부모 소멸 후 자식의 자발적 종료를 기다리는 시간입니다.
	WatchdogGrace time.Duration
	// RaiseDelay는 시그널 재발신 전 지연입니다. 0이면 기본값입니다.
	RaiseDelay time.Duration
}

// engineOptions는 현대/구 진입점 공통의 정규화된 엔진 설정입니다.
type engineOptions struct {
	parent        host.Process
	spawn         SpawnFunc
	dir           string
	env           []string
	stdio         stdio.Spec
	handler       CloseHandler
	noWatchdog    bool
	watchdogGrace time.Duration
	raiseDelay    time.Duration

	// 구 진입점 전용
	legacy         bool
	legacyCallback LegacyCallback
}

// engine은 Options를 기본값이 채워진 엔진 설정으로 변환합니다.
func (o *Options) engine() *engineOptions {
	if o == nil {
		o = &Options{}
	}
	e := &engineOptions{
		parent:        o.Parent,
		spawn:         o.Spawn,
		dir:           o.Dir,
		env:           o.Env,
		stdio:         o.Stdio,
		handler:       o.OnClose,
		noWatchdog:    o.NoWatchdog,
		watchdogGrace: o.WatchdogGrace,
		raiseDelay:    o.RaiseDelay,
	}
	e.fillDefaults()
	return e
}

func (e *engineOptions) fillDefaults() {
	if e.parent == nil {
		e.parent = host.Sys()
	}
	if e.spawn == nil {
		e.spawn = func(cmd *exec.Cmd) error { return cmd.Start() }
	}
	if e.watchdogGrace <= 0 {
		e.watchdogGrace = watchdog.DefaultGrace
	}
	if e.raiseDelay <= 0 {
		e.raiseDelay = DefaultRaiseDelay
	}
}
