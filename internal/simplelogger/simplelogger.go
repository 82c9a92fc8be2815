package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// EnvVar names the environment variable that holds the log file path.
const EnvVar = "AFFIXDIFF_LOG_FILE"

var mu sync.Mutex

// Enabled reports whether EnvVar is set, i.e. whether Log may write anything. Callers use it to skip computing arguments that only feed a log line.
func Enabled() bool {
	return os.Getenv(EnvVar) != ""
}

// Log is a minimal printf-style logger. It appends formatted output, terminated by a newline, to the file named by EnvVar.
//
// If EnvVar is unset/empty or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}

	// One open/write/close per line; the mutex keeps lines from interleaving within a process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(b.Bytes())
}
