package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// FragmentLogger records every assembled C fragment, tagged with the list it
// belongs to.
type FragmentLogger interface {
	Log(list string, fragment string)
}

type fragmentLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFragment creates a FragmentLogger writing to w. A nil writer discards.
func NewFragment(w io.Writer) FragmentLogger {
	return &fragmentLogger{w: w}
}

// Log emits one line per fragment line, prefixed with a timestamp and the list name.
func (f *fragmentLogger) Log(list string, fragment string) {
	if f.w == nil || fragment == "" {
		return
	}

	ts := time.Now().Format("2006/01/02 15:04:05")
	var b strings.Builder
	for _, line := range strings.Split(fragment, "\n") {
		fmt.Fprintf(&b, "%s %-20s %s\n", ts, list, line)
	}

	f.mu.Lock()
	_, _ = io.WriteString(f.w, b.String())
	f.mu.Unlock()
}
