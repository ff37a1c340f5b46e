// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"bufio"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// countingWriter keeps track of the number of bytes written so far, which is
// the offset of the next record in the file.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// recordWriter appends CBOR records to a temporary file.
type recordWriter struct {
	f   *os.File
	buf *bufio.Writer
	cnt *countingWriter
	enc *cbor.Encoder
}

func newRecordWriter(f *os.File) *recordWriter {
	buf := bufio.NewWriter(f)
	cnt := &countingWriter{w: buf}
	return &recordWriter{f: f, buf: buf, cnt: cnt, enc: cbor.NewEncoder(cnt)}
}

func (w *recordWriter) write(v interface{}) error {
	if err := w.enc.Encode(v); err != nil {
		return errors.Wrapf(err, "writing record to %s", w.f.Name())
	}
	return nil
}

// offset is the position of the next record.
func (w *recordWriter) offset() int64 {
	return w.cnt.n
}

func (w *recordWriter) close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return errors.Wrapf(err, "flushing %s", w.f.Name())
	}
	return errors.Wrapf(w.f.Close(), "closing %s", w.f.Name())
}

// chunkDecoder returns a decoder for the records stored in the given section
// of f.
func chunkDecoder(f *os.File, offset, length int64) *cbor.Decoder {
	return cbor.NewDecoder(bufio.NewReader(io.NewSectionReader(f, offset, length)))
}

// createTemp creates a new file in the temporary directory of the engine.
func (c *configs) createTemp(pattern string) (*os.File, error) {
	f, err := os.CreateTemp(c.tmpdir, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating temporary file")
	}
	return f, nil
}
