// Package logging собирает структурные логгеры сервисов.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// New создаёт логгер с отметками времени, пишущий в w на уровне level
// ("debug", "info", "warn", "error"). Неизвестный уровень считается info.
func New(w io.Writer, level, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           ParseLevel(level),
		Prefix:          prefix,
	})
}

// ParseLevel переводит имя уровня в log.Level, по умолчанию info.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Discard возвращает логгер, который ничего не пишет.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
