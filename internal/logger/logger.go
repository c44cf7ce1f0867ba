// Package logger는 구조화된 로깅을 제공합니다.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/insajin/foreground/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup은 로거를 초기화합니다.
// 자식 프로세스가 stdout을 그대로 물려받으므로 프록시 자체 로그는
// stderr 또는 설정된 파일로만 내보냅니다.
func Setup(cfg config.LoggingConfig) {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// 타임스탬프 포맷 설정 (RFC3339)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			// 파일 열기 실패 시 stderr 사용
			log.Warn().Err(err).Str("file", cfg.File).Msg("로그 파일을 열 수 없어 stderr를 사용합니다")
		} else {
			output = file
		}
	}

	if cfg.Format == "text" {
		// 콘솔 포맷 (개발 시 가독성)
		consoleWriter := zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
		log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		// JSON 포맷 (기본값)
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}
}

// parseLevel은 문자열 레벨을 zerolog.Level로 변환합니다.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRunID는 실행 ID를 컨텍스트에 추가한 로거를 반환합니다.
func WithRunID(runID string) zerolog.Logger {
	return log.With().Str("run_id", runID).Logger()
}
