// Package ipc는 부모-자식 프로세스 간 메시지 채널을 제공합니다.
// 채널은 SOCK_SEQPACKET 소켓쌍으로 구현되어 메시지 경계가 보존되며,
// SCM_RIGHTS 보조 데이터로 OS 핸들(fd)을 메시지에 동봉할 수 있습니다.
// 페이로드는 해석하지 않고 바이트 그대로 전달합니다.
package ipc

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// EnvChannelFD는 자식에게 상속된 채널 fd 번호를 전달하는 환경변수입니다.
const EnvChannelFD = "FOREGROUND_IPC_FD"

const (
	// maxMessage는 수신 버퍼 크기입니다. AF_UNIX 송신 버퍼 기본 한도보다
	// 크므로 실제로는 송신 측의 EMSGSIZE가 먼저 걸립니다.
	maxMessage = 1 << 20
	// maxRights는 SCM_RIGHTS 보조 데이터 버퍼 크기입니다.
	maxRights = 1024
)

// Message는 채널로 오가는 메시지 한 건입니다.
type Message struct {
	// Data는 메시지 본문입니다 (불투명 바이트).
	Data []byte
	// Rights는 SCM_RIGHTS 보조 데이터입니다 (동봉된 fd, 없으면 nil).
	Rights []byte
}

// Conn은 채널의 한쪽 끝입니다.
type Conn struct {
	uc *net.UnixConn
}

// Pair는 소켓쌍을 생성하고 부모 쪽 Conn과 자식에게 넘길 파일을 반환합니다.
// 자식 파일은 exec.Cmd.ExtraFiles로 상속시키고, EnvChannelFD 환경변수로
// fd 번호를 알려야 합니다. 자식 프로세스 시작 후 부모는 파일을 닫아야 합니다.
func Pair() (*Conn, *os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("IPC 소켓쌍 생성 실패: %w", err)
	}

	parentFile := os.NewFile(uintptr(fds[0]), "ipc|parent")
	childFile := os.NewFile(uintptr(fds[1]), "ipc|child")

	conn, err := fromFile(parentFile)
	if err != nil {
		childFile.Close()
		return nil, nil, err
	}
	return conn, childFile, nil
}

// ConnPair는 양쪽 모두 현재 프로세스에 남는 연결된 채널 쌍을 생성합니다.
// 프로세스 간 전달 없이 채널 동작을 검증할 때 사용합니다.
func ConnPair() (*Conn, *Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("IPC 소켓쌍 생성 실패: %w", err)
	}
	left, err := fromFile(os.NewFile(uintptr(fds[0]), "ipc|left"))
	if err != nil {
		unix.Close(fds[1])
		return nil, nil, err
	}
	right, err := fromFile(os.NewFile(uintptr(fds[1]), "ipc|right"))
	if err != nil {
		left.Close()
		return nil, nil, err
	}
	return left, right, nil
}

// FromEnv는 현재 프로세스에 상속된 채널을 찾습니다.
// 환경변수가 없으면 (nil, nil)을 반환합니다 — 채널 부재는 오류가 아닙니다.
func FromEnv() (*Conn, error) {
	v := os.Getenv(EnvChannelFD)
	if v == "" {
		return nil, nil
	}
	fd, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s 값 %q 파싱 실패: %w", EnvChannelFD, v, err)
	}
	return fromFile(os.NewFile(uintptr(fd), "ipc|inherited"))
}

// fromFile은 파일 디스크립터를 UnixConn으로 감쌉니다.
// net.FileConn은 fd를 복제하므로 원본 파일은 닫습니다.
func fromFile(f *os.File) (*Conn, error) {
	defer f.Close()
	c, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("IPC 채널 열기 실패: %w", err)
	}
	uc, ok := c.(*net.UnixConn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("IPC 채널 타입이 유닉스 소켓이 아님: %T", c)
	}
	return &Conn{uc: uc}, nil
}

// Send는 메시지를 보조 데이터와 함께 전송합니다.
func (c *Conn) Send(m Message) error {
	if _, _, err := c.uc.WriteMsgUnix(m.Data, m.Rights, nil); err != nil {
		return fmt.Errorf("IPC 메시지 전송 실패: %w", err)
	}
	return nil
}

// Recv는 메시지 한 건을 수신합니다. 상대가 채널을 닫으면 io.EOF를 반환합니다.
// 버퍼를 초과하는 메시지는 조용히 자르지 않고 오류를 반환합니다 — SEQPACKET은
// 잘린 나머지를 버리므로 재시도로 복구할 수 없습니다.
func (c *Conn) Recv() (Message, error) {
	return c.recv(maxMessage)
}

func (c *Conn) recv(bufSize int) (Message, error) {
	buf := make([]byte, bufSize)
	oob := make([]byte, maxRights)

	n, oobn, flags, _, err := c.uc.ReadMsgUnix(buf, oob)
	if err != nil {
		return Message{}, err
	}
	if flags&unix.MSG_TRUNC != 0 || flags&unix.MSG_CTRUNC != 0 {
		return Message{}, fmt.Errorf("IPC 메시지가 수신 버퍼(%d바이트)를 초과해 잘림", bufSize)
	}
	// SEQPACKET에서 0바이트 읽기는 상대방 종료를 의미합니다.
	if n == 0 && oobn == 0 {
		return Message{}, io.EOF
	}

	m := Message{Data: buf[:n]}
	if oobn > 0 {
		m.Rights = oob[:oobn]
	}
	return m, nil
}

// SetReadDeadline은 수신 대기 시한을 설정합니다. 릴레이 해제 시
// 차단된 Recv를 깨우는 용도로 사용합니다.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.uc.SetReadDeadline(t)
}

// Close는 채널을 닫습니다.
func (c *Conn) Close() error {
	return c.uc.Close()
}
