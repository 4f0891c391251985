package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"sync"
	"time"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return ColorGray
	case INFO:
		return ColorBlue
	case WARN:
		return ColorYellow
	case ERROR:
		return ColorRed
	default:
		return ColorPurple
	}
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// PlainWriter strips color escapes before writing, for log files.
type PlainWriter struct {
	w io.Writer
}

func NewPlainWriter(w io.Writer) *PlainWriter {
	return &PlainWriter{w: w}
}

func (pw *PlainWriter) Write(p []byte) (int, error) {
	if _, err := pw.w.Write(ansiRe.ReplaceAll(p, nil)); err != nil {
		return 0, err
	}
	return len(p), nil
}

type ColoredLogger struct {
	verbose bool
	color   bool
	mu      sync.RWMutex
	out     io.Writer
	logger  *log.Logger
}

// Logs go to stderr so generated code written to stdout stays clean.
var globalLogger = newColoredLogger(os.Stderr)

func newColoredLogger(out io.Writer) *ColoredLogger {
	return &ColoredLogger{
		color:  os.Getenv("NO_COLOR") == "",
		out:    out,
		logger: log.New(out, "", 0),
	}
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

func SetColor(enabled bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.color = enabled
}

func setOutput(out io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.out = out
	globalLogger.logger = log.New(out, "", 0)
}

// SetLogFile appends every level to path as well, without colors. The
// caller closes the returned file.
func SetLogFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	globalLogger.mu.RLock()
	out := globalLogger.out
	globalLogger.mu.RUnlock()
	setOutput(io.MultiWriter(out, NewPlainWriter(f)))
	return f, nil
}

func (cl *ColoredLogger) formatMessage(level LogLevel, message string, color bool) string {
	timestamp := time.Now().Format("06-01-02 15:04:05")

	if !color {
		return fmt.Sprintf("[%s] %-5s %s", timestamp, level.String(), message)
	}

	return fmt.Sprintf(
		"%s[%s]%s %s%-5s%s %s",
		ColorGray, timestamp, ColorReset,
		level.color(), level.String(), ColorReset,
		message,
	)
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	if level == DEBUG && !cl.verbose {
		cl.mu.RUnlock()
		return
	}
	logger := cl.logger
	color := cl.color
	cl.mu.RUnlock()

	logger.Println(cl.formatMessage(level, fmt.Sprintf(format, args...), color))

	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.log(FATAL, format, args...)
}
