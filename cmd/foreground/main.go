// Package main은 foreground 런처의 진입점입니다.
// 프로그램을 자식으로 실행하면서 표준 입출력과 시그널을 물려주고,
// 자식의 종료를 그대로 되돌려줍니다.
package main

import (
	"os"

	"github.com/insajin/foreground/internal/cli"
	"github.com/insajin/foreground/internal/watchdog"
)

// 빌드 시 ldflags로 주입되는 버전 정보
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// 감시 모드 진입 검사. 감시 환경변수가 설정된 채로 실행되면
	// 여기서 감시 루프를 돌고 복귀하지 않는다. 반드시 가장 먼저 호출.
	watchdog.Init()

	// 버전 정보를 cli 패키지에 설정
	cli.SetVersionInfo(version, commit, buildDate)

	// CLI 실행
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
