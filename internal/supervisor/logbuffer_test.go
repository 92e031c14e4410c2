package supervisor

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestLogBufferEvictsOldest(t *testing.T) {
	lb := NewLogBuffer(MaxLogLines)
	for i := 0; i < 750; i++ {
		lb.Append(Line{Text: fmt.Sprintf("line %d", i)})
	}

	all := lb.All()
	require.Len(t, all, MaxLogLines)
	assert.Equal(t, "line 250", all[0].Text)
	assert.Equal(t, "line 749", all[len(all)-1].Text)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, fmt.Sprintf("line %d", 250+i), all[i].Text)
	}
}

func TestLogBufferClear(t *testing.T) {
	lb := NewLogBuffer(3)
	lb.Append(Line{Text: "a"})
	lb.Append(Line{Text: "b"})
	lb.Clear()
	lb.Append(Line{Text: "c"})

	assert.Equal(t, 1, lb.Len())
	assert.Equal(t, "c", lb.Text())
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  []string
	}{
		{"single", "hello", []string{"hello"}},
		{"blank lines dropped", "a\n\n  \nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.chunk))
		})
	}
}

func TestLineWriterJoinsPartialWrites(t *testing.T) {
	var got []string
	w := newLineWriter(0, func(line string) { got = append(got, line) })

	w.Write([]byte("hel"))
	w.Write([]byte("lo\nwor"))
	w.Write([]byte("ld\n\n"))
	w.Write([]byte("tail"))
	assert.Equal(t, []string{"hello", "world"}, got)

	w.Flush()
	assert.Equal(t, []string{"hello", "world", "tail"}, got)
	assert.True(t, strings.HasPrefix(got[0], "hel"))
}

func TestLineWriterEmitsPartialLineWhenIdle(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	w := newLineWriter(20*time.Millisecond, func(line string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, line)
	})
	lines := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), got...)
	}

	w.Write([]byte("done\nName? "))
	assert.Equal(t, []string{"done"}, lines())

	require.Eventually(t, func() bool {
		return len(lines()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"done", "Name? "}, lines())

	w.Flush()
	assert.Len(t, lines(), 2)
}
