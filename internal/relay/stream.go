package relay

import (
	"io"
	"sync"
	"time"
)

// drainTimeout은 해제 시 출력 복사가 EOF에 도달하기를 기다리는 한도입니다.
// 자식이 이미 종료된 뒤라면 즉시 EOF가 오지만, 파이프를 물려받은
// 손자 프로세스가 남아있으면 무한정 기다리지 않고 강제로 닫습니다.
const drainTimeout = time.Second

// StreamEnds는 자식 프로세스의 파이프 끝입니다. stdio 모드에 따라
// 일부 또는 전부가 nil일 수 있습니다 (inherit 모드는 파이프가 없음).
type StreamEnds struct {
	Stdout io.ReadCloser
	Stderr io.ReadCloser
	Stdin  io.WriteCloser
}

// StdioSource는 스트림 중계 대상 부모 프로세스입니다.
type StdioSource interface {
	Stdin() io.Reader
	Stdout() io.Writer
	Stderr() io.Writer
}

// Streams는 존재하는 파이프만 부모의 해당 스트림과 연결합니다.
// 버퍼링이나 역압 제어는 추가하지 않고 io.Copy 그대로 둡니다.
// 해제 함수는 진행 중인 출력 복사가 EOF로 끝나기를 잠시 기다린 뒤
// 자식 쪽 끝을 모두 닫습니다.
func Streams(parent StdioSource, child StreamEnds) (detach func()) {
	var out sync.WaitGroup

	if child.Stdout != nil {
		out.Add(1)
		go func() {
			defer out.Done()
			_, _ = io.Copy(parent.Stdout(), child.Stdout)
		}()
	}
	if child.Stderr != nil {
		out.Add(1)
		go func() {
			defer out.Done()
			_, _ = io.Copy(parent.Stderr(), child.Stderr)
		}()
	}
	if child.Stdin != nil {
		// 입력 복사는 부모 stdin이 끝나지 않는 한 영원히 막혀있을 수
		// 있으므로 해제 시 기다리지 않고 자식 끝만 닫는다.
		go func() {
			_, _ = io.Copy(child.Stdin, parent.Stdin())
			// 부모 입력이 끝나면 자식도 EOF를 받아야 함
			_ = child.Stdin.Close()
		}()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if child.Stdin != nil {
				_ = child.Stdin.Close()
			}

			drained := make(chan struct{})
			go func() {
				out.Wait()
				close(drained)
			}()
			select {
			case <-drained:
			case <-time.After(drainTimeout):
			}

			if child.Stdout != nil {
				_ = child.Stdout.Close()
			}
			if child.Stderr != nil {
				_ = child.Stderr.Close()
			}
		})
	}
}
