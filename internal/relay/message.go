package relay

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/insajin/foreground/internal/ipc"
	"github.com/rs/zerolog/log"
)

// Messenger는 IPC 채널을 가질 수 있는 부모 프로세스입니다.
type Messenger interface {
	IPC() *ipc.Conn
}

// Messages는 부모와 자식의 IPC 채널 사이에서 메시지를 양방향으로
// 중계합니다. 메시지는 동봉된 OS 핸들(SCM_RIGHTS)까지 그대로 전달하며
// 본문은 해석하지 않습니다. 부모에게 채널이 없으면 아무 일도 하지 않는
// 해제 함수를 반환합니다.
func Messages(parent Messenger, child *ipc.Conn) (detach func()) {
	pc := parent.IPC()
	if pc == nil || child == nil {
		return func() {}
	}

	// 이전 해제가 남긴 과거 데드라인을 지워 재연결이 즉시 끝나지 않게 함
	_ = pc.SetReadDeadline(time.Time{})

	done := make(chan struct{})

	// 자식 → 부모
	go forward(child, pc, done, "child->parent")
	// 부모 → 자식
	go forward(pc, child, done, "parent->child")

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			// 자식 채널은 엔진 소유라 닫고, 부모 채널은 소유하지 않으므로
			// 데드라인으로 차단된 수신만 깨웁니다.
			_ = child.Close()
			_ = pc.SetReadDeadline(time.Now())
		})
	}
}

// forward는 src에서 dst로 메시지를 옮깁니다. 해제 또는 채널 종료 시 끝납니다.
func forward(src, dst *ipc.Conn, done <-chan struct{}, dir string) {
	for {
		m, err := src.Recv()
		if err != nil {
			select {
			case <-done:
			default:
				if !errors.Is(err, io.EOF) && !isTimeout(err) {
					log.Debug().Err(err).Str("direction", dir).Msg("IPC 중계 종료")
				}
			}
			return
		}
		select {
		case <-done:
			return
		default:
		}
		if err := dst.Send(m); err != nil {
			log.Debug().Err(err).Str("direction", dir).Msg("IPC 메시지 전달 실패")
			return
		}
	}
}

// isTimeout은 데드라인으로 인한 수신 중단인지 확인합니다.
func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
