package loggy

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ECHO mirrors log output to stderr when set.
var ECHO bool = false

// LogFolder is where per-slot log files land. Empty disables file logging,
// which is the default so the disk package stays quiet when used as a library.
var LogFolder string = ""

type Logger struct {
	w  io.Writer
	id int
}

var (
	mu      sync.Mutex
	loggers map[int]*Logger
	app     string = "cpm8"
)

// Get returns the logger for a volume slot, creating it on first use.
func Get(id int) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if loggers == nil {
		loggers = make(map[int]*Logger)
	}
	l, ok := loggers[id]
	if !ok {
		l = NewLogger(id)
		loggers[id] = l
	}
	return l
}

func NewLogger(id int) *Logger {
	l := &Logger{id: id, w: io.Discard}

	if LogFolder != "" {
		filename := fmt.Sprintf("%s_%d_%s.log", app, id, fts())
		os.MkdirAll(LogFolder, 0755)
		f, err := os.Create(LogFolder + filename)
		if err == nil {
			l.w = f
		}
	}

	return l
}

// SetOutput redirects a logger, mainly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.w = w
}

func ts() string {
	t := time.Now()
	return fmt.Sprintf(
		"%.4d/%.2d/%.2d %.2d:%.2d:%.2d",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
	)
}

func fts() string {
	t := time.Now()
	return fmt.Sprintf(
		"%.4d%.2d%.2d%.2d%.2d%.2d",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
	)
}

func (l *Logger) llogf(designator string, format string, v ...interface{}) {

	format = ts() + " " + designator + " :: " + format

	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}

	line := fmt.Sprintf(format, v...)
	l.w.Write([]byte(line))

	if ECHO {
		os.Stderr.WriteString(line)
	}

}

func (l *Logger) llog(designator string, v ...interface{}) {

	line := ts() + " " + designator + " :: "
	for _, vv := range v {
		line += fmt.Sprintf("%v ", vv)
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	l.w.Write([]byte(line))

	if ECHO {
		os.Stderr.WriteString(line)
	}
}

func (l *Logger) Logf(format string, v ...interface{}) {
	l.llogf("INFO ", format, v...)
}

func (l *Logger) Log(v ...interface{}) {
	l.llog("INFO ", v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.llogf("ERROR", format, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.llog("ERROR", v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.llogf("DEBUG", format, v...)
}

func (l *Logger) Debug(v ...interface{}) {
	l.llog("DEBUG", v...)
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.llogf("FATAL", format, v...)
	os.Exit(1)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.llog("FATAL", v...)
	os.Exit(1)
}
