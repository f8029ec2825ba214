package logger

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#79c3ee"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05f65")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#78dba9"))
)

var (
	infoPrefix    = infoStyle.Render("[INFO]") + " "
	warnPrefix    = warnStyle.Render("[WARN]") + " "
	errorPrefix   = errorStyle.Render("[ERROR]") + " "
	successPrefix = successStyle.Render("[SUCCESS]") + " "
)

// Logger is a levelled wrapper around log.Logger. Prefix and write happen
// under one lock so concurrent miners don't interleave levels.
type Logger struct {
	mu     sync.Mutex
	logger *log.Logger
}

func NewLogger() *Logger {
	return &Logger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// SetOutput redirects every subsequent line to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *Logger) println(prefix string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Println(v...)
}

func (l *Logger) printf(prefix, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetPrefix(prefix)
	l.logger.Printf(format, v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.println(infoPrefix, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.printf(infoPrefix, format, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.println(warnPrefix, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.printf(warnPrefix, format, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.println(errorPrefix, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.printf(errorPrefix, format, v...)
}

func (l *Logger) Success(v ...interface{}) {
	l.println(successPrefix, v...)
}

func (l *Logger) Successf(format string, v ...interface{}) {
	l.printf(successPrefix, format, v...)
}
