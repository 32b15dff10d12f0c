package namespaces

import "fmt"

// Log implements the `log` namespace: the info/warn/error calls a script
// uses instead of print() for anything it wants surfaced distinctly from
// plotted output.
type Log struct {
	prefix string
}

// NewLog returns a Log namespace prefixing every line with prefix (e.g. the
// script's id), the same convention the engine's own host log object uses.
func NewLog(prefix string) *Log {
	return &Log{prefix: prefix}
}

// Info prints msg at info level.
func (l *Log) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

// Warn prints msg at warn level.
func (l *Log) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

// Error prints msg at error level.
func (l *Log) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}
