package cli

import "testing"

// TestParseConfigValue는 설정 값 타입 변환을 테스트합니다.
func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected interface{}
	}{
		{"불리언 true", "true", true},
		{"불리언 false", "false", false},
		{"정수", "500", 500},
		{"실수", "2.5", 2.5},
		{"문자열", "debug", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseConfigValue(tt.input)
			if result != tt.expected {
				t.Errorf("parseConfigValue(%q) = %v (%T), want %v (%T)",
					tt.input, result, result, tt.expected, tt.expected)
			}
		})
	}
}

// TestIsValidConfigKey는 설정 키 검증을 테스트합니다.
func TestIsValidConfigKey(t *testing.T) {
	valid := []string{
		"logging.level", "logging.format", "logging.file",
		"proxy.grace_period_ms", "proxy.raise_delay_ms",
		"proxy.no_watchdog", "proxy.ipc",
	}
	for _, key := range valid {
		if !isValidConfigKey(key) {
			t.Errorf("isValidConfigKey(%q) = false, want true", key)
		}
	}

	invalid := []string{"server.url", "proxy", "logging", "unknown.key", ""}
	for _, key := range invalid {
		if isValidConfigKey(key) {
			t.Errorf("isValidConfigKey(%q) = true, want false", key)
		}
	}
}
