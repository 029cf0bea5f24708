// Package byteio provides byte channels for the machine's Inp and Print
// instructions: Stream over an io.Reader/io.Writer pair (a process's stdin
// and stdout in the usual deployment) and Script, an in-memory source with
// captured output.
package byteio

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Stream is a buffered channel over an io.Reader and an io.Writer.
//
// Pending output is flushed before every read so prompts become visible
// before the program blocks for input. WriteChar cannot report failure to the
// machine; the first write error is kept and returned by Err and Flush, and
// later writes are dropped.
type Stream struct {
	r   *bufio.Reader
	w   *bufio.Writer
	err error
}

// NewStream returns a Stream reading from r and writing to w. A nil r is an
// empty input; a nil w discards output.
func NewStream(r io.Reader, w io.Writer) *Stream {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	if w == nil {
		w = io.Discard
	}
	return &Stream{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

// ReadByte returns the next input byte. At the end of input it returns io.EOF
// unwrapped.
func (s *Stream) ReadByte() (byte, error) {
	if s.w.Buffered() > 0 {
		s.flush()
	}
	b, err := s.r.ReadByte()
	if err != nil && err != io.EOF {
		return 0, errors.Wrap(err, "byteio: read")
	}
	return b, err
}

// WriteChar buffers one output byte.
func (s *Stream) WriteChar(c byte) {
	if s.err != nil {
		return
	}
	if err := s.w.WriteByte(c); err != nil {
		s.err = errors.Wrap(err, "byteio: write")
	}
}

func (s *Stream) flush() {
	if s.err != nil {
		return
	}
	if err := s.w.Flush(); err != nil {
		s.err = errors.Wrap(err, "byteio: flush")
	}
}

// Flush writes any buffered output and returns the first write error seen.
func (s *Stream) Flush() error {
	s.flush()
	return s.err
}

// Err returns the first write error seen, if any.
func (s *Stream) Err() error { return s.err }

// Script is an in-memory channel: reads come from a fixed input and writes
// are captured.
type Script struct {
	in  []byte
	pos int
	out bytes.Buffer
}

// NewScript returns a Script that yields input, then io.EOF.
func NewScript(input []byte) *Script {
	return &Script{in: input}
}

// ScriptString is NewScript for string input.
func ScriptString(input string) *Script {
	return NewScript([]byte(input))
}

func (s *Script) ReadByte() (byte, error) {
	if s.pos >= len(s.in) {
		return 0, io.EOF
	}
	b := s.in[s.pos]
	s.pos++
	return b, nil
}

func (s *Script) WriteChar(c byte) {
	s.out.WriteByte(c)
}

// Output returns everything written so far.
func (s *Script) Output() []byte { return s.out.Bytes() }

// String returns the output as a string.
func (s *Script) String() string { return s.out.String() }

// Remaining returns the number of unread input bytes.
func (s *Script) Remaining() int { return len(s.in) - s.pos }
