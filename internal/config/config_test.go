package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestConfig_Validate는 설정 검증을 테스트합니다.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "유효한 설정",
			config: &Config{
				Logging: LoggingConfig{Level: "info", Format: "json"},
				Proxy:   ProxyConfig{GracePeriodMs: 500, RaiseDelayMs: 200},
			},
			wantErr: false,
		},
		{
			name: "유효하지 않은 로그 레벨",
			config: &Config{
				Logging: LoggingConfig{Level: "invalid", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "유효하지 않은 로그 포맷",
			config: &Config{
				Logging: LoggingConfig{Level: "info", Format: "invalid"},
			},
			wantErr: true,
		},
		{
			name: "음수 유예 시간",
			config: &Config{
				Logging: LoggingConfig{Level: "info", Format: "json"},
				Proxy:   ProxyConfig{GracePeriodMs: -1},
			},
			wantErr: true,
		},
		{
			name: "음수 재발생 지연",
			config: &Config{
				Logging: LoggingConfig{Level: "info", Format: "json"},
				Proxy:   ProxyConfig{RaiseDelayMs: -1},
			},
			wantErr: true,
		},
		{
			name: "0 유예 시간 (기본값 사용)",
			config: &Config{
				Logging: LoggingConfig{Level: "warn", Format: "text"},
				Proxy:   ProxyConfig{GracePeriodMs: 0, RaiseDelayMs: 0},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestProxyConfig_Durations는 밀리초 설정의 Duration 변환을 테스트합니다.
func TestProxyConfig_Durations(t *testing.T) {
	tests := []struct {
		name      string
		config    ProxyConfig
		wantGrace time.Duration
		wantRaise time.Duration
	}{
		{
			name:      "명시적 값",
			config:    ProxyConfig{GracePeriodMs: 1000, RaiseDelayMs: 100},
			wantGrace: time.Second,
			wantRaise: 100 * time.Millisecond,
		},
		{
			name:      "0 유예는 기본값으로",
			config:    ProxyConfig{GracePeriodMs: 0, RaiseDelayMs: 0},
			wantGrace: 500 * time.Millisecond,
			wantRaise: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.GracePeriod(); got != tt.wantGrace {
				t.Errorf("GracePeriod() = %v, want %v", got, tt.wantGrace)
			}
			if got := tt.config.RaiseDelay(); got != tt.wantRaise {
				t.Errorf("RaiseDelay() = %v, want %v", got, tt.wantRaise)
			}
		})
	}
}

// TestSetDefaults는 기본값 등록을 테스트합니다.
func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	if got := v.GetString("logging.level"); got != "info" {
		t.Errorf("logging.level 기본값 = %q, want %q", got, "info")
	}
	if got := v.GetString("logging.format"); got != "json" {
		t.Errorf("logging.format 기본값 = %q, want %q", got, "json")
	}
	if got := v.GetInt("proxy.grace_period_ms"); got != 500 {
		t.Errorf("proxy.grace_period_ms 기본값 = %d, want 500", got)
	}
	if got := v.GetInt("proxy.raise_delay_ms"); got != 200 {
		t.Errorf("proxy.raise_delay_ms 기본값 = %d, want 200", got)
	}
	if v.GetBool("proxy.no_watchdog") {
		t.Error("proxy.no_watchdog 기본값 = true, want false")
	}
	if v.GetBool("proxy.ipc") {
		t.Error("proxy.ipc 기본값 = true, want false")
	}
}

// TestExpandPath는 경로 확장을 테스트합니다.
func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "틸드로 시작하는 경로",
			input:    "~/logs/foreground.log",
			expected: home + "/logs/foreground.log",
		},
		{
			name:     "절대 경로",
			input:    "/var/log/foreground.log",
			expected: "/var/log/foreground.log",
		},
		{
			name:     "상대 경로",
			input:    "logs/foreground.log",
			expected: "logs/foreground.log",
		},
		{
			name:     "빈 문자열",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}
