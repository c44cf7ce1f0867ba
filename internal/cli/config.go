// config.go는 설정 관리 명령을 구현합니다.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/insajin/foreground/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd는 설정 관리를 위한 상위 명령어입니다.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정을 관리합니다",
	Long: `설정 파일의 값을 조회하거나 수정합니다.

설정 파일 위치: ~/.config/foreground/config.yaml

모든 키는 FOREGROUND_ 접두사 환경변수로도 설정할 수 있습니다.
예: FOREGROUND_PROXY_GRACE_PERIOD_MS=1000`,
}

// configSetCmd는 설정 값을 저장하는 명령어입니다.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값을 저장합니다",
	Long: `설정 파일에 값을 저장합니다.

키는 점(.)으로 구분된 경로를 사용합니다.
예시:
  foreground config set logging.level debug
  foreground config set proxy.grace_period_ms 1000

지원하는 설정 키:
  logging.level          - 로그 레벨 (debug, info, warn, error)
  logging.format         - 로그 포맷 (json, text)
  logging.file           - 로그 파일 경로 (비어있으면 stderr)
  proxy.grace_period_ms  - 감시 프로세스의 SIGKILL 유예 시간(밀리초)
  proxy.raise_delay_ms   - 시그널 재발생 전 지연(밀리초)
  proxy.no_watchdog      - 감시 프로세스 비활성화 (true, false)
  proxy.ipc              - 자식과 메시지 채널 열기 (true, false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configGetCmd는 설정 값을 조회하는 명령어입니다.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "설정 값을 조회합니다",
	Long: `설정 파일에서 특정 키의 값을 조회합니다.

키는 점(.)으로 구분된 경로를 사용합니다.
예시:
  foreground config get logging.level
  foreground config get proxy.grace_period_ms`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configListCmd는 전체 설정을 출력하는 명령어입니다.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "전체 설정을 출력합니다",
	Long:  `현재 적용된 모든 설정을 YAML 포맷으로 출력합니다.`,
	RunE:  runConfigList,
}

// configPathCmd는 설정 파일 경로를 출력하는 명령어입니다.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로를 출력합니다",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.DefaultConfigPath())
		return nil
	},
}

// configInitCmd는 기본 설정 파일을 생성하는 명령어입니다.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일을 생성합니다",
	Long: `기본 설정 파일을 ~/.config/foreground/config.yaml에 생성합니다.

이미 파일이 존재하면 덮어쓰지 않습니다.
강제로 덮어쓰려면 --force 플래그를 사용하세요.`,
	RunE: runConfigInit,
}

var forceInit bool

func init() {
	rootCmd.AddCommand(configCmd)

	// 하위 명령 등록
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	// init 명령 플래그
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "기존 파일을 덮어씁니다")
}

// runConfigSet은 설정 값을 저장합니다.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// 유효한 키인지 확인
	if !isValidConfigKey(key) {
		return fmt.Errorf("알 수 없는 설정 키: %s", key)
	}

	// 값 변환 (숫자, 불리언 등)
	parsedValue := parseConfigValue(value)

	// viper에 설정
	viper.Set(key, parsedValue)

	// 설정 디렉토리 확인/생성
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}

	// 설정 파일 저장
	configPath := config.DefaultConfigPath()
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	fmt.Printf("%s = %v\n", key, parsedValue)
	fmt.Printf("설정이 저장되었습니다: %s\n", configPath)
	return nil
}

// runConfigGet은 설정 값을 조회합니다.
func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value := viper.Get(key)
	if value == nil {
		return fmt.Errorf("설정 키를 찾을 수 없습니다: %s", key)
	}

	fmt.Printf("%s = %v\n", key, value)
	return nil
}

// runConfigList는 전체 설정을 출력합니다.
func runConfigList(cmd *cobra.Command, args []string) error {
	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// 설정 파일 경로 출력
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("# 설정 파일: %s\n", configFile)
	} else {
		fmt.Printf("# 설정 파일: (기본값 사용 중)\n")
	}
	fmt.Println()

	// YAML로 직렬화
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("YAML 직렬화 실패: %w", err)
	}

	fmt.Println(string(yamlData))
	return nil
}

// runConfigInit은 기본 설정 파일을 생성합니다.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultConfigPath()

	// 기존 파일 확인
	if !forceInit {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 플래그로 덮어쓸 수 있습니다", configPath)
		}
	}

	// 설정 디렉토리 생성
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}

	// 기본 설정 파일 내용
	defaultConfig := `# foreground 설정 파일
# 생성됨: foreground config init

logging:
  level: "info"    # debug, info, warn, error
  format: "json"   # json, text
  file: ""         # 비어있으면 stderr

proxy:
  grace_period_ms: 500   # 감시 프로세스의 SIGKILL 유예 시간
  raise_delay_ms: 200    # 시그널 재발생 전 지연
  no_watchdog: false     # 감시 프로세스 비활성화
  ipc: false             # 자식과 메시지 채널 열기
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Printf("설정 파일이 생성되었습니다: %s\n", configPath)
	return nil
}

// isValidConfigKey는 유효한 설정 키인지 확인합니다.
func isValidConfigKey(key string) bool {
	validKeys := map[string]bool{
		"logging.level":         true,
		"logging.format":        true,
		"logging.file":          true,
		"proxy.grace_period_ms": true,
		"proxy.raise_delay_ms":  true,
		"proxy.no_watchdog":     true,
		"proxy.ipc":             true,
	}
	return validKeys[key]
}

// parseConfigValue는 문자열 값을 적절한 타입으로 변환합니다.
func parseConfigValue(value string) interface{} {
	// 불리언
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	// 정수
	var intVal int
	if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
		// 소수점이 없으면 정수로 처리
		if !strings.Contains(value, ".") {
			return intVal
		}
	}

	// 실수
	var floatVal float64
	if _, err := fmt.Sscanf(value, "%f", &floatVal); err == nil {
		return floatVal
	}

	// 기본: 문자열
	return value
}
