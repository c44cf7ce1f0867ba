// Package relay는 부모-자식 간 이벤트(시그널, 스트림, 메시지)를 중계하는
// 되돌릴 수 있는 구독을 제공합니다. 각 Attach는 독립적인 해제 함수를
// 반환하며, 해제는 완전하고 두 번 호출해도 안전합니다.
package relay

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Killable은 시그널을 받을 수 있는 자식 프로세스입니다.
type Killable interface {
	Kill(sig os.Signal) error
}

// Notifier는 시그널 구독이 가능한 부모 프로세스입니다.
type Notifier interface {
	Notify(ch chan<- os.Signal, sigs ...os.Signal)
	Stop(ch chan<- os.Signal)
}

// Signals는 부모가 받는 모든 중계 가능 시그널을 자식에게 전달하도록
// 구독을 등록하고 해제 함수를 반환합니다. SIGKILL은 포착이 불가능하므로
// 여기서 다루지 않습니다 — 그 공백은 watchdog이 담당합니다.
func Signals(parent Notifier, child Killable) (detach func()) {
	ch := make(chan os.Signal, 32)
	parent.Notify(ch, ForwardedSignals...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				if err := child.Kill(sig); err != nil {
					log.Debug().Err(err).Str("signal", sig.String()).
						Msg("시그널 전달 실패 (자식이 이미 종료됨)")
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			parent.Stop(ch)
			close(done)
		})
	}
}
