// Package stdio는 자식 프로세스의 표준 입출력 디스크립터 구성을 계산합니다.
// 부모가 IPC 채널을 가진 경우 자식에게도 IPC 슬롯이 보장되도록 구성을 확장합니다.
package stdio

// Mode는 디스크립터 하나의 연결 방식입니다.
type Mode string

const (
	// Inherit는 부모의 디스크립터를 자식과 직접 공유합니다 (파이프 없음).
	Inherit Mode = "inherit"
	// Pipe는 부모-자식 간 파이프를 생성합니다.
	Pipe Mode = "pipe"
	// Ignore는 디스크립터를 /dev/null로 연결합니다.
	Ignore Mode = "ignore"
	// IPC는 메시지 채널 전용 슬롯입니다.
	IPC Mode = "ipc"
)

// Spec은 호출자가 지정하는 stdio 구성입니다.
// Mode(단일 공유 모드) 또는 Modes(디스크립터별 목록) 중 하나만 사용합니다.
// 둘 다 비어있으면 기본값 Inherit가 적용됩니다.
type Spec struct {
	Mode  Mode
	Modes []Mode
}

// IsZero는 호출자가 아무 구성도 지정하지 않았는지 확인합니다.
func (s Spec) IsZero() bool {
	return s.Mode == "" && len(s.Modes) == 0
}

// Policy는 자식 프로세스에 적용할 디스크립터 목록을 계산합니다.
// 순수 함수이며 입력을 수정하지 않습니다.
//   - 구성이 없으면 기본값 inherit (0/1/2 직접 공유)
//   - 단일 모드는 세 슬롯으로 확장
//   - withIPC가 참이고 IPC 슬롯이 없으면 목록 끝에 추가
//   - IPC 슬롯이 이미 있으면 그대로 반환 (멱등)
func Policy(s Spec, withIPC bool) []Mode {
	var modes []Mode
	switch {
	case len(s.Modes) > 0:
		modes = make([]Mode, len(s.Modes))
		copy(modes, s.Modes)
	case s.Mode != "":
		modes = []Mode{s.Mode, s.Mode, s.Mode}
	default:
		modes = []Mode{Inherit, Inherit, Inherit}
	}

	if withIPC && !hasIPC(modes) {
		modes = append(modes, IPC)
	}
	return modes
}

// hasIPC는 목록에 IPC 슬롯이 있는지 확인합니다.
func hasIPC(modes []Mode) bool {
	for _, m := range modes {
		if m == IPC {
			return true
		}
	}
	return false
}
