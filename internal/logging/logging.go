// Package logging は zerolog のロガーを設定から組み立てる
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"tinyweb/internal/config"
)

// New は設定に従ったロガーを作成する
// 不明なレベルは info として扱う
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: true}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
