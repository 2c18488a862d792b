package feed

import "io"

// SimReader replays a fixed, in-memory slice of messages, for tests and
// the cmd/feedsim driver that need deterministic input without a real
// byte stream.
type SimReader struct {
	messages []Message
	pos      int
}

// NewSimReader creates a reader over messages, replayed in order.
func NewSimReader(messages []Message) *SimReader {
	return &SimReader{messages: messages}
}

// Next returns the next message, or io.EOF once exhausted — the same
// contract as Decoder.Next, so callers can treat either as a Reader.
func (s *SimReader) Next() (Message, error) {
	if s.pos >= len(s.messages) {
		return nil, io.EOF
	}
	m := s.messages[s.pos]
	s.pos++
	return m, nil
}

// Reader is the minimal message-source interface, satisfied by both
// Decoder and SimReader.
type Reader interface {
	Next() (Message, error)
}
