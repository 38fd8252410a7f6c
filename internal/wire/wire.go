// Package wire provides protobuf message framing for history buffer
// snapshots.
//
// Messages are length-delimited using protobuf's standard varint encoding.
// This allows a stream of snapshots to be written to a file or socket and
// read back one at a time.
package wire

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtxerr/wavehist/config"
	"github.com/xtxerr/wavehist/internal/errors"
	"github.com/xtxerr/wavehist/internal/storage/history"
)

// Reader reads length-delimited snapshots from an io.Reader.
// It is safe for concurrent use.
type Reader struct {
	r       *bufio.Reader
	mu      sync.Mutex
	maxSize int64
}

// NewReader creates a Reader wrapping the given io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), maxSize: config.DefaultMaxMessageSize}
}

// SetMaxSize overrides the maximum accepted message size.
func (r *Reader) SetMaxSize(n int64) {
	r.mu.Lock()
	r.maxSize = n
	r.mu.Unlock()
}

// ReadStruct reads the next raw message.
// Returns io.EOF at a clean end of stream and an error if the message
// exceeds the maximum size.
func (r *Reader) ReadStruct() (*structpb.Struct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := &structpb.Struct{}
	opts := protodelim.UnmarshalOptions{
		MaxSize: r.maxSize,
	}
	if err := opts.UnmarshalFrom(r.r, msg); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return msg, nil
}

// Read reads and decodes the next snapshot.
func (r *Reader) Read() (history.Snapshot, error) {
	msg, err := r.ReadStruct()
	if err != nil {
		return history.Snapshot{}, err
	}
	s, err := history.SnapshotFromProto(msg)
	if err != nil {
		return history.Snapshot{}, fmt.Errorf("decode snapshot: %w: %w", errors.ErrInvalidSnapshot, err)
	}
	return s, nil
}

// Writer writes length-delimited snapshots to an io.Writer.
// It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter creates a Writer wrapping the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteStruct writes a raw message with length prefix.
func (w *Writer) WriteStruct(msg *structpb.Struct) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := protodelim.MarshalTo(w.w, msg); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Write encodes and writes a snapshot with length prefix.
func (w *Writer) Write(s history.Snapshot) error {
	msg, err := s.Proto()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return w.WriteStruct(msg)
}

// Conn combines Reader and Writer for bidirectional communication.
type Conn struct {
	*Reader
	*Writer
}

// NewConn creates a Conn from an io.ReadWriter (e.g., net.Conn).
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		Reader: NewReader(rw),
		Writer: NewWriter(rw),
	}
}
