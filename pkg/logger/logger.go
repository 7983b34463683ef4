// Package logger provides namespaced debug logging gated by the DEBUG
// environment variable.
//
// Loggers are cheap to create and are intended to be declared once per file:
//
//	var clientLog = logger.New("kontent:client")
//
// Output is written to stderr only when DEBUG matches the logger's
// namespace. DEBUG accepts a comma- or space-separated list of glob
// patterns ("*", "kontent:*", "cli:export"); a pattern prefixed with "-"
// excludes matching namespaces:
//
//	DEBUG=* kontent-migrate export ...
//	DEBUG="migrate:*,-migrate:richtext" kontent-migrate migrate ...
//
// Disabled loggers short-circuit before formatting, so leaving Printf
// calls in hot paths is fine.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Logger writes debug messages for a single namespace.
type Logger struct {
	namespace string
	enabled   bool
}

var (
	patternsOnce sync.Once
	includes     []string
	excludes     []string

	forceAll atomic.Bool
)

// EnableAll turns on every namespace regardless of DEBUG. Loggers are
// created at package init, before flags are parsed, so the --verbose
// flag routes through this instead of the environment.
func EnableAll() {
	forceAll.Store(true)
}

func loadPatterns() {
	patternsOnce.Do(func() {
		raw := os.Getenv("DEBUG")
		for _, p := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
			if neg, ok := strings.CutPrefix(p, "-"); ok {
				excludes = append(excludes, neg)
			} else {
				includes = append(includes, p)
			}
		}
	})
}

// matchPattern supports a single trailing "*" wildcard, which is all the
// DEBUG convention uses.
func matchPattern(pattern, namespace string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(namespace, prefix)
	}
	return pattern == namespace
}

func namespaceEnabled(namespace string) bool {
	loadPatterns()
	for _, p := range excludes {
		if matchPattern(p, namespace) {
			return false
		}
	}
	for _, p := range includes {
		if matchPattern(p, namespace) {
			return true
		}
	}
	return false
}

// New returns a logger for the given namespace. Namespaces follow the
// "package:file" convention, e.g. "migrate:export".
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   namespaceEnabled(namespace),
	}
}

// Enabled reports whether this logger's namespace is active. Use it to
// guard expensive argument construction.
func (l *Logger) Enabled() bool {
	return l.enabled || forceAll.Load()
}

// Print logs a message in the manner of fmt.Sprint.
func (l *Logger) Print(args ...any) {
	if !l.Enabled() {
		return
	}
	l.emit(fmt.Sprint(args...))
}

// Printf logs a formatted message in the manner of fmt.Sprintf.
func (l *Logger) Printf(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.emit(fmt.Sprintf(format, args...))
}

func (l *Logger) emit(message string) {
	log.New(os.Stderr, "", log.LstdFlags).Printf("%s %s", l.namespace, message)
}
