/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const logTimeFormat = "2006-01-02 15:04:05.000"

// LogOptions is the logging section of the application configuration.
type LogOptions struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // text, json
	FileEnabled bool   `yaml:"file_enabled"`
	FileDir     string `yaml:"file_dir"`
	FileFormat  string `yaml:"file_format"`
	MaxAgeDays  int    `yaml:"max_age_days"`
}

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	fileHooked       = map[*logrus.Logger]bool{}

	settingsMu        sync.RWMutex
	consoleLevel      = logrus.InfoLevel
	consoleFormat     = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	consoleOutput     io.Writer = os.Stdout
	fileLogEnabled    = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir        = "logs"
	fileLogFormat     = EnvDefaultString("FILE_LOG_FORMAT", "text")
	fileLogMaxAgeDays = 7
)

// Configure applies logging options to every logger created afterwards and
// updates the level of those already registered.
func Configure(opts LogOptions) {
	settingsMu.Lock()
	if opts.Format != "" {
		consoleFormat = normalizeFormat(opts.Format)
	}
	if opts.FileFormat != "" {
		fileLogFormat = normalizeFormat(opts.FileFormat)
	}
	fileLogEnabled = opts.FileEnabled
	if opts.FileDir != "" {
		fileLogDir = opts.FileDir
	}
	if opts.MaxAgeDays > 0 {
		fileLogMaxAgeDays = opts.MaxAgeDays
	}
	settingsMu.Unlock()
	ConfigureLogLevel(opts.Level)

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	for name, lg := range loggerRegistry {
		applySettings(lg, name)
	}
}

// SetConsoleOutput redirects console output of all loggers, mainly for tests.
func SetConsoleOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	settingsMu.Lock()
	consoleOutput = w
	settingsMu.Unlock()

	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	for _, lg := range loggerRegistry {
		lg.SetOutput(w)
	}
}

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return "json"
	}
	return "text"
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// ConfigureLogLevel sets the level of every registered logger.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	settingsMu.Lock()
	consoleLevel = lvl
	settingsMu.Unlock()

	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
}

// SetLoggerLevel changes the level of a single named logger.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns the logger registered under name, creating it on first use.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetReportCaller(true)
	applySettings(l, name)
	loggerRegistry[name] = l
	return l
}

// applySettings brings l in line with the current console and file settings.
// The file hook is attached at most once per logger.
// Callers hold loggerRegistryMu.
func applySettings(l *logrus.Logger, name string) {
	settingsMu.RLock()
	level, format, out := consoleLevel, consoleFormat, consoleOutput
	withFile, dir, fileFormat, maxAge := fileLogEnabled, fileLogDir, fileLogFormat, fileLogMaxAgeDays
	settingsMu.RUnlock()

	l.SetOutput(out)
	l.SetLevel(level)
	if format == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&Log4jColorFormatter{LoggerName: name, ColorCaller: true, NameWidth: 10})
	}
	if withFile && !fileHooked[l] {
		if err := AddDailyRollingFileHook(l, name, dir, fileFormat, maxAge); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "file log disabled for %s: %v\n", name, err)
			return
		}
		fileHooked[l] = true
	}
}

type levelWriterHook struct {
	writers   map[logrus.Level]io.Writer
	formatter logrus.Formatter
}

func (h *levelWriterHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *levelWriterHook) Fire(e *logrus.Entry) error {
	w, ok := h.writers[e.Level]
	if !ok {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// dailyLevelWriter writes to <dir>/<yyyy-mm-dd>/<level>.log and removes day
// directories older than maxAgeDays when the date rolls over.
type dailyLevelWriter struct {
	baseDir    string
	level      string
	maxAgeDays int
	mu         sync.Mutex
	curDate    string
	file       *os.File
}

func (w *dailyLevelWriter) Write(p []byte) (int, error) {
	today := time.Now().Format("2006-01-02")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil || w.curDate != today {
		if w.file != nil {
			_ = w.file.Close()
		}
		dir := filepath.Join(w.baseDir, today)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(filepath.Join(dir, w.level+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		rolled := w.curDate != ""
		w.file, w.curDate = f, today
		if rolled {
			w.cleanup()
		}
	}
	return w.file.Write(p)
}

func (w *dailyLevelWriter) cleanup() {
	if w.maxAgeDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays)
	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", e.Name(), time.Local)
		if err == nil && d.Before(cutoff) {
			_ = os.RemoveAll(filepath.Join(w.baseDir, e.Name()))
		}
	}
}

// AddDailyRollingFileHook attaches per-level daily files to l.
func AddDailyRollingFileHook(l *logrus.Logger, name, dir, format string, maxAgeDays int) error {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	mk := func(level string) io.Writer {
		return &dailyLevelWriter{baseDir: dir, level: level, maxAgeDays: maxAgeDays}
	}
	errW := mk("error")

	var formatter logrus.Formatter = &Log4jColorFormatter{LoggerName: name, NameWidth: 10}
	if format == "json" {
		formatter = &JSONLogFormatter{LoggerName: name}
	}
	l.AddHook(&levelWriterHook{
		writers: map[logrus.Level]io.Writer{
			logrus.TraceLevel: mk("trace"),
			logrus.DebugLevel: mk("debug"),
			logrus.InfoLevel:  mk("info"),
			logrus.WarnLevel:  mk("warn"),
			logrus.ErrorLevel: errW,
			logrus.FatalLevel: errW,
			logrus.PanicLevel: errW,
		},
		formatter: formatter,
	})
	return nil
}

// Log4jColorFormatter renders "time LEVEL pid --- [main] name caller : msg k=v".
type Log4jColorFormatter struct {
	LoggerName  string
	ColorCaller bool
	NameWidth   int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	color := f.ColorCaller
	wrap := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	name := f.LoggerName
	if f.NameWidth > 0 {
		if r := []rune(name); len(r) > f.NameWidth {
			name = string(r[:f.NameWidth])
		}
		name = fmt.Sprintf("%*s", f.NameWidth, name)
	}
	caller := ""
	if entry.Caller != nil {
		caller = " " + wrap(fmt.Sprintf("%s:%d", shortCallerPath(entry.Caller.File), entry.Caller.Line), ansiFaint)
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format(logTimeFormat))
	b.WriteString(" ")
	b.WriteString(wrap(lvl, levelColor(entry.Level)))
	b.WriteString(" ")
	b.WriteString(wrap(fmt.Sprintf("%-6d", os.Getpid()), ansiMagenta))
	b.WriteString(" --- [main] ")
	b.WriteString(wrap(name, ansiCyan))
	b.WriteString(caller)
	b.WriteString(" : ")
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONLogFormatter renders one JSON object per line. Request fields set by the
// HTTP access log are lifted to top-level keys.
type JSONLogFormatter struct {
	LoggerName string
}

type jsonLogRecord struct {
	Time        string                 `json:"time"`
	Level       string                 `json:"level"`
	Logger      string                 `json:"logger"`
	Caller      string                 `json:"caller,omitempty"`
	Message     string                 `json:"message"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Method      string                 `json:"method,omitempty"`
	Path        string                 `json:"path,omitempty"`
	StatusCode  int                    `json:"status_code,omitempty"`
	LatencyTime string                 `json:"latency_time,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := jsonLogRecord{
		Time:    entry.Time.Format(logTimeFormat),
		Level:   entry.Level.String(),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = fmt.Sprintf("%s:%d", shortCallerPath(entry.Caller.File), entry.Caller.Line)
	}

	extra := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		s, isString := v.(string)
		switch {
		case k == "req_uri" && isString:
			rec.Path = s
		case k == "req_method" && isString:
			rec.Method = s
		case k == "client_ip" && isString:
			rec.ClientIP = s
		case k == "latency_time" && isString:
			rec.LatencyTime = s
		case k == "status_code":
			if n, ok := v.(int); ok {
				rec.StatusCode = n
			} else {
				extra[k] = v
			}
		default:
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		rec.Fields = extra
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func levelColor(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return ansiRed
	case logrus.WarnLevel:
		return ansiYellow
	case logrus.InfoLevel:
		return ansiGreen
	case logrus.DebugLevel:
		return ansiBlue
	default:
		return ansiMagenta
	}
}

// shortCallerPath keeps the last two path elements: "service/sale.go".
func shortCallerPath(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return p
}

func sortedKeys(m logrus.Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
