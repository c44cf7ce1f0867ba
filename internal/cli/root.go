// Package cli는 foreground 런처의 명령어를 정의합니다.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/insajin/foreground"
	"github.com/insajin/foreground/internal/config"
	"github.com/insajin/foreground/internal/logger"
	"github.com/insajin/foreground/internal/stdio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// 전역 플래그
	cfgFile string
	verbose bool

	// 실행 플래그
	childDir string

	// 버전 정보 (main에서 주입)
	appVersion   string
	appCommit    string
	appBuildDate string
)

// rootCmd는 CLI의 루트 명령어입니다. 하위 명령 없이 호출하면 주어진
// 프로그램을 자식으로 실행하고 그 종료를 그대로 되돌려줍니다.
var rootCmd = &cobra.Command{
	Use:   "foreground [flags] -- program [args...]",
	Short: "자식 프로세스를 전면에서 실행하는 런처",
	Long: `foreground는 프로그램을 자식 프로세스로 실행하면서 표준 입출력과
시그널을 그대로 물려주고, 자식이 종료되면 같은 종료 코드 또는 같은
시그널로 자신도 종료합니다.

런처가 자식과 종료 방식을 일치시켜야 하는 래퍼 스크립트 자리에
사용합니다. 플래그와 자식 인자를 구분하려면 --를 사용하세요.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	RunE: runRoot,
}

// Execute는 루트 명령어를 실행합니다.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo는 버전 정보를 설정합니다.
func SetVersionInfo(version, commit, buildDate string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
}

// GetVersionInfo는 버전 정보를 반환합니다.
func GetVersionInfo() (version, commit, buildDate string) {
	return appVersion, appCommit, appBuildDate
}

func init() {
	cobra.OnInitialize(initConfig)

	// 전역 플래그 정의
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"설정 파일 경로 (기본값: ~/.config/foreground/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"상세 로그 출력 (debug 레벨)")

	// 실행 플래그: 설정 파일의 proxy.* 키와 같은 우선순위 체계를 탄다
	rootCmd.Flags().StringVar(&childDir, "dir", "", "자식의 작업 디렉토리")
	rootCmd.Flags().Bool("ipc", false, "자식과 메시지 채널을 엽니다")
	rootCmd.Flags().Bool("no-watchdog", false, "고아 방지 감시 프로세스를 끕니다")
	rootCmd.Flags().Int("grace-ms", 500, "감시 프로세스의 SIGKILL 유예 시간(밀리초)")
	rootCmd.Flags().Int("raise-delay-ms", 200, "시그널 재발생 전 지연(밀리초)")

	_ = viper.BindPFlag("proxy.ipc", rootCmd.Flags().Lookup("ipc"))
	_ = viper.BindPFlag("proxy.no_watchdog", rootCmd.Flags().Lookup("no-watchdog"))
	_ = viper.BindPFlag("proxy.grace_period_ms", rootCmd.Flags().Lookup("grace-ms"))
	_ = viper.BindPFlag("proxy.raise_delay_ms", rootCmd.Flags().Lookup("raise-delay-ms"))
}

// runRoot는 자식을 실행하고 종료를 그대로 반영합니다.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := &foreground.Options{
		Dir:           childDir,
		NoWatchdog:    cfg.Proxy.NoWatchdog,
		WatchdogGrace: cfg.Proxy.GracePeriod(),
		RaiseDelay:    cfg.Proxy.RaiseDelay(),
	}
	if cfg.Proxy.IPC {
		opts.Stdio = stdio.Spec{Modes: []stdio.Mode{
			stdio.Inherit, stdio.Inherit, stdio.Inherit, stdio.IPC,
		}}
	}

	c, err := foreground.Start(args[0], args[1:], opts)
	if err != nil {
		return err
	}

	action, err := c.Wait(cmd.Context())
	if err != nil {
		return err
	}

	// 자식과 같은 방식으로 종료 (코드 또는 시그널 재발생)
	action.Invoke()
	return nil
}

// initConfig는 설정 파일을 초기화합니다.
// 설정 우선순위: 환경변수 > 설정파일 > 기본값
func initConfig() {
	if cfgFile != "" {
		// 명시적 설정 파일 사용
		viper.SetConfigFile(cfgFile)
	} else {
		// 기본 설정 경로: ~/.config/foreground/config.yaml
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "홈 디렉토리를 찾을 수 없습니다: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "foreground")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// 환경변수 자동 바인딩 (FOREGROUND_ 접두사)
	viper.SetEnvPrefix("FOREGROUND")
	viper.AutomaticEnv()

	// 기본값 설정
	config.SetDefaults(viper.GetViper())

	// 설정 파일 읽기 (없어도 오류 아님)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// 설정 파일이 있지만 읽기 실패한 경우만 오류
			fmt.Fprintf(os.Stderr, "설정 파일 읽기 실패: %v\n", err)
		}
	}
}

// initLogger는 로거를 초기화합니다.
func initLogger() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// verbose 플래그가 설정되면 debug 레벨로 오버라이드
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger.Setup(cfg.Logging)
	return nil
}
