package push

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-stomp/stomp/v3/frame"
)

// ErrIncompleteFrame is returned when a message ends inside a frame.
var ErrIncompleteFrame = errors.New("incomplete stomp frame")

// Encode serializes f as the payload of one WebSocket message.
func Encode(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, fmt.Errorf("encoding %s frame: %w", f.Command, err)
	}
	return buf.Bytes(), nil
}

// Decode parses every frame in one WebSocket message. Heart-beat
// end-of-lines between frames are skipped.
func Decode(data []byte) ([]*frame.Frame, error) {
	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[len(trimmed)-1] != 0 {
		return nil, ErrIncompleteFrame
	}

	r := frame.NewReader(bytes.NewReader(data))
	var frames []*frame.Frame
	for {
		f, err := r.Read()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("decoding stomp frame: %w", err)
		}
		if f == nil {
			continue
		}
		frames = append(frames, f)
	}
}
