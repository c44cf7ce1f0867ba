package foreground

import (
	"fmt"

	"github.com/insajin/foreground/internal/stdio"
)

// LegacyCallback은 구 호출 규약의 콜백입니다. 자식 종료 직후, 아직 실행되지
// 않은 CloseAction과 함께 동기적으로 호출됩니다.
type LegacyCallback func(action *CloseAction) Decision

// Run은 구 호출 규약의 진입점입니다. 현대 Start와 같은 프록시를 수행하지만
// 관측 가능한 차이가 있어 별도 경로로 유지됩니다:
//   - 부모/생성 함수 재정의를 지원하지 않음 (항상 실제 현재 프로세스)
//   - stdio는 항상 inherit이며 스트림 중계를 제공하지 않음
//   - 자식 종료 즉시, 콜백 실행 전에 부모의 예약 종료 코드를
//     (시그널 종료면 128+시그널 번호, 아니면 종료 코드로) 미리 설정함
//   - 콜백은 Future 해소가 아니라 종료 처리 경로에서 동기 호출됨
//
// 가변 인자는 구 규약의 중복 시그니처를 수용합니다: 문자열은 순서대로
// 인자 목록에 추가되고, []string은 통째로 추가되며, 마지막 인자가 콜백이면
// 콜백으로 사용됩니다. 콜백이 없으면 CloseAction을 즉시 실행합니다.
//
//	Run("make", "build", "install")
//	Run("ls", []string{"-l", "/tmp"})
//	Run("sh", "-c", "exit 3", func(a *CloseAction) Decision { ... })
func Run(program string, rest ...any) (*Child, error) {
	args, cb, err := normalizeRunArgs(rest)
	if err != nil {
		return nil, err
	}

	e := &engineOptions{
		stdio:          stdio.Spec{Mode: stdio.Inherit},
		legacy:         true,
		legacyCallback: cb,
	}
	e.fillDefaults()
	return start(program, args, e)
}

// normalizeRunArgs는 구 규약의 위치 인자를 (인자 목록, 콜백)으로 변환하는
// 어댑터입니다. 콜백은 마지막 위치에서만 허용됩니다.
func normalizeRunArgs(rest []any) ([]string, LegacyCallback, error) {
	var args []string
	cb := LegacyCallback(func(*CloseAction) Decision { return UseComputed() })

	for i, v := range rest {
		last := i == len(rest)-1
		switch v := v.(type) {
		case string:
			args = append(args, v)
		case []string:
			args = append(args, v...)
		case LegacyCallback:
			if !last {
				return nil, nil, fmt.Errorf("콜백은 마지막 인자여야 합니다 (위치 %d)", i)
			}
			cb = v
		case func(*CloseAction) Decision:
			if !last {
				return nil, nil, fmt.Errorf("콜백은 마지막 인자여야 합니다 (위치 %d)", i)
			}
			cb = v
		case func(*CloseAction):
			if !last {
				return nil, nil, fmt.Errorf("콜백은 마지막 인자여야 합니다 (위치 %d)", i)
			}
			cb = func(a *CloseAction) Decision {
				v(a)
				return UseComputed()
			}
		case nil:
			// 생략된 선택 인자
		default:
			return nil, nil, fmt.Errorf("지원하지 않는 인자 타입: %T (위치 %d)", v, i)
		}
	}
	return args, cb, nil
}
