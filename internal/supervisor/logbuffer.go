package supervisor

import (
	"bytes"
	"strings"
	"sync"
	"time"
)

// MaxLogLines is the per-task log capacity.
const MaxLogLines = 500

// Kind tags where a log line came from.
type Kind int

const (
	KindStdout Kind = iota
	KindStderr
	KindInfo
	KindSuccess
	KindWarning
	KindError
)

// Line is one entry in a task log.
type Line struct {
	Kind Kind
	Text string
	Time time.Time
}

// LogBuffer is a fixed size ring of log lines. When full, the oldest line
// is overwritten.
type LogBuffer struct {
	mu    sync.RWMutex
	lines []Line
	start int
	count int
}

// NewLogBuffer creates a buffer holding at most maxLines lines.
func NewLogBuffer(maxLines int) *LogBuffer {
	if maxLines <= 0 {
		maxLines = MaxLogLines
	}
	return &LogBuffer{lines: make([]Line, maxLines)}
}

// Append adds a line, evicting the oldest one when full.
func (lb *LogBuffer) Append(line Line) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	capacity := len(lb.lines)
	if lb.count < capacity {
		lb.lines[(lb.start+lb.count)%capacity] = line
		lb.count++
		return
	}
	lb.lines[lb.start] = line
	lb.start = (lb.start + 1) % capacity
}

// All returns every line, oldest first.
func (lb *LogBuffer) All() []Line {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.slice(0, lb.count)
}

// slice copies logical lines [from, to). Caller holds the lock.
func (lb *LogBuffer) slice(from, to int) []Line {
	out := make([]Line, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, lb.lines[(lb.start+i)%len(lb.lines)])
	}
	return out
}

// Text returns the buffer as newline joined text.
func (lb *LogBuffer) Text() string {
	lines := lb.All()
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// Clear drops every line.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	clear(lb.lines)
	lb.start = 0
	lb.count = 0
}

// Len returns the number of lines held.
func (lb *LogBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.count
}

// SplitLines normalizes a raw chunk into lines, dropping blank ones.
func SplitLines(chunk string) []string {
	var lines []string
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// partialFlushDelay is how long a line without a trailing newline waits for
// more output before it is emitted on its own.
const partialFlushDelay = 100 * time.Millisecond

// lineWriter is an io.Writer that emits complete lines from a process stream.
// Text left without a newline is emitted after idle, so prompts waiting for
// stdin still show up. An idle of zero holds partial text until Flush.
type lineWriter struct {
	mu     sync.Mutex
	buffer []byte
	emit   func(line string)
	idle   time.Duration
	timer  *time.Timer
}

func newLineWriter(idle time.Duration, emit func(line string)) *lineWriter {
	return &lineWriter{buffer: make([]byte, 0, 4096), emit: emit, idle: idle}
}

// Write implements io.Writer
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, p...)
	for {
		idx := bytes.IndexByte(w.buffer, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.buffer[:idx]), "\r")
		w.buffer = w.buffer[idx+1:]
		if strings.TrimSpace(line) != "" {
			w.emit(line)
		}
	}

	if len(w.buffer) > 0 && w.idle > 0 {
		if w.timer == nil {
			w.timer = time.AfterFunc(w.idle, w.Flush)
		} else {
			w.timer.Reset(w.idle)
		}
	}
	return len(p), nil
}

// Flush emits whatever partial line is left.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	line := strings.TrimRight(string(w.buffer), "\r")
	w.buffer = w.buffer[:0]
	if strings.TrimSpace(line) != "" {
		w.emit(line)
	}
}
