package mobile

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// maxLineBytes bounds a single scanned line. Identity payloads stay far
// below it.
const maxLineBytes = 1 << 20

// LineSource reads one payload per line from a terminal or pipe. Keyboard
// wedge scanners type the decoded text followed by Enter, so this is also
// how a hardware scanner shows up.
type LineSource struct {
	lines *bufio.Scanner
}

func NewLineSource(r io.Reader) *LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &LineSource{lines: sc}
}

// Next blocks on the underlying reader; ctx is only checked between lines.
func (s *LineSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.lines.Scan() {
		if err := s.lines.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(s.lines.Text(), "\r"), nil
}
