// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is the structured logging facade used by every femtoqueue
// component: the queue engine, the stale reclaimer, and the CLI all log
// through here rather than calling the stdlib log package directly. Records
// carry a "severity" field (TRACE/DEBUG/INFO/WARNING/ERROR) instead of
// slog's own "level" key, in either text or JSON form, and the severity
// threshold is adjustable at runtime via a shared slog.LevelVar.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity name constants, matched against cfg.Config.Log.Severity.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// Custom slog.Level values. TRACE sits below slog's built-in Debug level;
// OFF sits above Error so that no record at any built-in level passes the
// threshold.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

// RotateConfig mirrors the knobs lumberjack.Logger exposes for file-based
// log rotation.
type RotateConfig struct {
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
}

// DefaultRotateConfig returns the rotation settings used when a log file is
// configured but no explicit rotation policy is given.
func DefaultRotateConfig() RotateConfig {
	return RotateConfig{MaxFileSizeMB: 10, BackupFileCount: 2, Compress: false}
}

// Config selects where and how the default logger writes.
type Config struct {
	// File is the path to log to. Empty means stderr.
	File string
	// Format is "text" or "json"; any other value (including empty) is
	// treated as "json".
	Format string
	// Severity is one of the constants above.
	Severity string
	Rotate   RotateConfig
}

// asyncBufferSize bounds how many pending log lines may queue for the
// background flush goroutine before new ones start being dropped.
const asyncBufferSize = 1024

type loggerFactory struct {
	mu         sync.Mutex
	filePath   string
	lumberjack *lumberjack.Logger
	async      *AsyncLogger
	level      string
	format     string
	rotate     RotateConfig
}

var (
	programLevel         = new(slog.LevelVar)
	defaultLoggerFactory = &loggerFactory{
		level:  INFO,
		format: "text",
		rotate: DefaultRotateConfig(),
	}
	defaultLogger *slog.Logger
)

func init() {
	setLoggingLevel(defaultLoggerFactory.level, programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
}

// Init configures the package-level default logger per c. It replaces
// whatever logger was previously installed; callers normally invoke it once
// at process startup, after parsing cfg.Config.
func Init(c Config) error {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	defaultLoggerFactory.format = c.Format
	defaultLoggerFactory.level = c.Severity
	defaultLoggerFactory.rotate = c.Rotate
	defaultLoggerFactory.filePath = c.File

	if defaultLoggerFactory.async != nil {
		_ = defaultLoggerFactory.async.Close()
		defaultLoggerFactory.async = nil
	}

	var w io.Writer = os.Stderr
	if c.File != "" {
		lj := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.Rotate.MaxFileSizeMB,
			MaxBackups: c.Rotate.BackupFileCount,
			Compress:   c.Rotate.Compress,
		}
		defaultLoggerFactory.lumberjack = lj
		// Open the file synchronously so callers can rely on it existing
		// as soon as Init returns, rather than racing the async flush.
		if err := lj.Rotate(); err != nil {
			return fmt.Errorf("creating log file %s: %w", c.File, err)
		}
		// File writes go through AsyncLogger so that Push/Pop/Done/Fail's
		// one log line per call never blocks the queue's hot path on
		// rotation or disk I/O.
		async := NewAsyncLogger(lj, asyncBufferSize)
		defaultLoggerFactory.async = async
		w = async
	}

	setLoggingLevel(c.Severity, programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
	return nil
}

// Close flushes and closes the default logger's file writer, if one is
// configured. It is a no-op when logging to stderr. Callers should invoke
// it once at process shutdown, after no further log calls will be made.
func Close() error {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	if defaultLoggerFactory.async == nil {
		return nil
	}
	err := defaultLoggerFactory.async.Close()
	defaultLoggerFactory.async = nil
	return err
}

// SetLogFormat changes only the output format ("text" or "json") of the
// default logger, leaving its destination and severity threshold alone.
func SetLogFormat(format string) {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	defaultLoggerFactory.format = format

	var w io.Writer = os.Stderr
	if defaultLoggerFactory.async != nil {
		w = defaultLoggerFactory.async
	}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
}

// setLoggingLevel maps a severity name onto programLevel. Unrecognized
// names fall back to INFO.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	case TRACE:
		programLevel.Set(LevelTrace)
	case DEBUG:
		programLevel.Set(LevelDebug)
	case INFO:
		programLevel.Set(LevelInfo)
	case WARNING:
		programLevel.Set(LevelWarn)
	case ERROR:
		programLevel.Set(LevelError)
	case OFF:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return TRACE
	case l < LevelInfo:
		return DEBUG
	case l < LevelWarn:
		return INFO
	case l < LevelError:
		return WARNING
	default:
		return ERROR
	}
}

// createJsonOrTextHandler builds the slog.Handler used by the default
// logger: a JSON or text handler, wrapped so every message gets prefix
// prepended, every severity is rendered under the key "severity" rather
// than "level", and the message under "message" rather than "msg". Text
// records format the time as "2006/01/02 15:04:05.000000"; JSON records
// carry it as "timestamp": {"seconds": ..., "nanos": ...}.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, levelVar *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: textReplaceAttr,
	}

	var h slog.Handler
	if f.format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		opts.ReplaceAttr = jsonReplaceAttr
		h = slog.NewJSONHandler(w, opts)
	}
	return &prefixHandler{Handler: h, prefix: prefix}
}

func textReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		return slog.String("severity", severityName(a.Value.Any().(slog.Level)))
	case slog.TimeKey:
		return slog.String(slog.TimeKey, a.Value.Time().Format("2006/01/02 15:04:05.000000"))
	case slog.MessageKey:
		return slog.String("message", a.Value.String())
	default:
		return a
	}
}

func jsonReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		return slog.String("severity", severityName(a.Value.Any().(slog.Level)))
	case slog.TimeKey:
		t := a.Value.Time()
		return slog.Group("timestamp",
			slog.Int64("seconds", t.Unix()),
			slog.Int64("nanos", int64(t.Nanosecond())),
		)
	case slog.MessageKey:
		return slog.String("message", a.Value.String())
	default:
		return a
	}
}

// prefixHandler prepends a fixed string to every log message. It exists so
// tests can tag their own log lines (see logger_test.go) without every
// caller threading a prefix through.
type prefixHandler struct {
	slog.Handler
	prefix string
}

func (h *prefixHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = h.prefix + r.Message
	return h.Handler.Handle(ctx, r)
}

func (h *prefixHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prefixHandler{Handler: h.Handler.WithAttrs(attrs), prefix: h.prefix}
}

func (h *prefixHandler) WithGroup(name string) slog.Handler {
	return &prefixHandler{Handler: h.Handler.WithGroup(name), prefix: h.prefix}
}

func log(level slog.Level, format string, v ...any) {
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...any) { log(LevelTrace, format, v...) }
func Debugf(format string, v ...any) { log(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { log(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { log(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { log(LevelError, format, v...) }
