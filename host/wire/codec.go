package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Decoder reads messages from a stream.
type Decoder interface {
	Decode(v interface{}) error
}

// Encoder writes messages to a stream.
type Encoder interface {
	Encode(v interface{}) error
}

// Codec frames messages on a byte stream.
type Codec interface {
	Name() string
	NewDecoder(r io.Reader) Decoder
	NewEncoder(w io.Writer) Encoder
}

// CodecFor returns a codec by name: "json" for JSON lines, "msgpack" for a
// stream of MessagePack values.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "json", "":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// MaxFrameSize is the maximum size of a JSON request line.
const MaxFrameSize = 16 * 1024 * 1024

// FrameError reports a request which could not be decoded. The framing of the
// stream is intact, so serving continues with the next request.
type FrameError struct {
	Err error
}

func (e *FrameError) Error() string {
	return "malformed request: " + e.Err.Error()
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

// NewDecoder creates a decoder reading one JSON value per line. Blank lines
// are skipped.
func (jsonCodec) NewDecoder(r io.Reader) Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxFrameSize)
	return &lineDecoder{scanner: scanner}
}

type lineDecoder struct {
	scanner *bufio.Scanner
}

func (d *lineDecoder) Decode(v interface{}) error {
	for d.scanner.Scan() {
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return &FrameError{Err: err}
		}
		return nil
	}
	if err := d.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// NewEncoder creates an encoder writing one JSON value per line.
func (jsonCodec) NewEncoder(w io.Writer) Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// msgpackCodec shares the json struct tags of the message types.
type msgpackCodec struct{}

func (msgpackCodec) Name() string {
	return "msgpack"
}

func (msgpackCodec) NewDecoder(r io.Reader) Decoder {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	return dec
}

func (msgpackCodec) NewEncoder(w io.Writer) Encoder {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc
}
