package mobile

import (
	"context"
	"io"
)

// Source produces decoded QR payloads, one per call. It returns io.EOF once
// no further payloads will arrive.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// StaticSource replays a fixed list of payloads.
type StaticSource struct {
	payloads []string
	pos      int
}

func NewStaticSource(payloads ...string) *StaticSource {
	return &StaticSource{payloads: payloads}
}

func (s *StaticSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.payloads) {
		return "", io.EOF
	}
	p := s.payloads[s.pos]
	s.pos++
	return p, nil
}
