// Package config는 foreground의 설정 관리를 담당합니다.
// 설정 우선순위는 환경변수 > 설정파일 > 기본값 순입니다.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config는 전체 애플리케이션 설정을 나타냅니다.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
}

// LoggingConfig는 로깅 설정입니다.
type LoggingConfig struct {
	// Level은 로그 레벨입니다 (debug, info, warn, error).
	Level string `mapstructure:"level"`
	// Format은 로그 포맷입니다 (json, text).
	Format string `mapstructure:"format"`
	// File은 로그 파일 경로입니다. 비어있으면 stderr로 출력합니다.
	// 자식이 stdout/stderr를 물려받으므로 프록시 자체 로그는 파일로
	// 돌리는 것이 일반적입니다.
	File string `mapstructure:"file"`
}

// ProxyConfig는 자식 프로세스 중계 설정입니다.
type ProxyConfig struct {
	// GracePeriodMs는 감시 프로세스가 부모 사망을 감지한 뒤
	// 자식에게 SIGKILL을 보내기까지의 유예 시간(밀리초)입니다.
	GracePeriodMs int `mapstructure:"grace_period_ms"`
	// RaiseDelayMs는 시그널 종료를 부모에 재발생시키기 전 대기
	// 시간(밀리초)입니다. 종료 직전 출력이 플러시될 여유를 줍니다.
	RaiseDelayMs int `mapstructure:"raise_delay_ms"`
	// NoWatchdog은 감시 프로세스를 띄우지 않습니다.
	NoWatchdog bool `mapstructure:"no_watchdog"`
	// IPC는 자식과 메시지 채널을 엽니다.
	IPC bool `mapstructure:"ipc"`
}

// SetDefaults는 viper에 기본값을 등록합니다.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("proxy.grace_period_ms", 500)
	v.SetDefault("proxy.raise_delay_ms", 200)
	v.SetDefault("proxy.no_watchdog", false)
	v.SetDefault("proxy.ipc", false)
}

// Load는 설정을 로드하고 Config 구조체를 반환합니다.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정 파싱 실패: %w", err)
	}

	// 홈 디렉토리 경로 확장
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// GracePeriod는 감시 유예 시간을 time.Duration으로 반환합니다.
func (p *ProxyConfig) GracePeriod() time.Duration {
	if p.GracePeriodMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(p.GracePeriodMs) * time.Millisecond
}

// RaiseDelay는 시그널 재발생 지연을 time.Duration으로 반환합니다.
func (p *ProxyConfig) RaiseDelay() time.Duration {
	if p.RaiseDelayMs < 0 {
		return 0
	}
	return time.Duration(p.RaiseDelayMs) * time.Millisecond
}

// Validate는 설정의 유효성을 검사합니다.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("유효하지 않은 로그 레벨: %s (debug, info, warn, error 중 하나)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("유효하지 않은 로그 포맷: %s (json, text 중 하나)", c.Logging.Format)
	}

	if c.Proxy.GracePeriodMs < 0 {
		return fmt.Errorf("grace_period_ms는 0 이상이어야 합니다")
	}
	if c.Proxy.RaiseDelayMs < 0 {
		return fmt.Errorf("raise_delay_ms는 0 이상이어야 합니다")
	}

	return nil
}

// expandPath는 ~를 홈 디렉토리로 확장합니다.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// EnsureConfigDir는 설정 디렉토리가 존재하는지 확인하고 없으면 생성합니다.
func EnsureConfigDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("홈 디렉토리를 찾을 수 없습니다: %w", err)
	}

	configDir := filepath.Join(home, ".config", "foreground")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}

	return nil
}

// DefaultConfigPath는 기본 설정 파일 경로를 반환합니다.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "foreground", "config.yaml")
}
