package redact

import (
	"io"
	"sync"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

const placeholder = "[REDACTED]"

// Writer wraps an io.Writer and replaces any occurrence of the configured
// secret values (access and refresh tokens) with [REDACTED] before the bytes
// reach the underlying writer. Matching uses Aho-Corasick so any number of
// secrets is scanned in one pass. A small tail is buffered between writes so
// a secret split across two Write calls is still caught.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	matcher aho.AhoCorasick
	active  bool
	tailCap int
	tail    []byte
}

// NewWriter builds a redacting writer over out. Empty secrets are ignored;
// with no usable secrets, writes pass through untouched.
func NewWriter(out io.Writer, secrets []string) *Writer {
	var patterns []string
	maxLen := 0
	for _, s := range secrets {
		if s == "" {
			continue
		}
		patterns = append(patterns, s)
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	w := &Writer{out: out}
	if len(patterns) == 0 {
		return w
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{})
	w.matcher = builder.Build(patterns)
	w.active = true
	w.tailCap = maxLen - 1
	return w
}

// Write implements io.Writer. The reported byte count covers the input, not
// the (possibly shorter) redacted output.
func (w *Writer) Write(p []byte) (int, error) {
	if !w.active {
		return w.out.Write(p)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.emit(append(w.tail, p...), false); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush releases the buffered tail, redacting any secret fully contained in it.
func (w *Writer) Flush() error {
	if !w.active {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tail := w.tail
	w.tail = nil
	return w.emit(tail, true)
}

// emit redacts buf and writes everything except, unless final, a tail of up
// to tailCap bytes that could be the prefix of a secret continued by the next
// Write. The retained tail never cuts into a replaced region.
func (w *Writer) emit(buf []byte, final bool) error {
	if len(buf) == 0 {
		w.tail = nil
		return nil
	}

	var redacted []byte
	pos := 0
	for _, m := range w.matcher.FindAll(string(buf)) {
		if m.Start() < pos {
			continue
		}
		redacted = append(redacted, buf[pos:m.Start()]...)
		redacted = append(redacted, placeholder...)
		pos = m.End()
	}
	redacted = append(redacted, buf[pos:]...)

	keep := 0
	if !final {
		// Only unredacted trailing bytes can be a secret prefix.
		unmatched := len(buf) - pos
		keep = w.tailCap
		if unmatched < keep {
			keep = unmatched
		}
	}

	cut := len(redacted) - keep
	if cut > 0 {
		if _, err := w.out.Write(redacted[:cut]); err != nil {
			return err
		}
	}
	w.tail = append([]byte(nil), redacted[cut:]...)
	return nil
}
