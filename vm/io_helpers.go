// This file is part of sal8 - https://github.com/db47h/sal8
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"bufio"
	"io"
)

type byteReaderWrapper struct {
	io.Reader
	b [1]byte
}

func (r *byteReaderWrapper) ReadByte() (byte, error) {
	for {
		n, err := r.Reader.Read(r.b[:])
		if n > 0 {
			return r.b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (r *byteReaderWrapper) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// newByteReader returns either r if it implements io.ByteReader or wraps it up
// into a byteReaderWrapper. Wrapped readers are not buffered, so that a VM
// never consumes more input than it actually reads.
func newByteReader(r io.Reader) io.ByteReader {
	switch rr := r.(type) {
	case nil:
		return nil
	case io.ByteReader:
		return rr
	default:
		return &byteReaderWrapper{Reader: r}
	}
}

type multiReader struct {
	readers []io.ByteReader
}

func (mr *multiReader) ReadByte() (byte, error) {
	for len(mr.readers) > 0 {
		b, err := mr.readers[0].ReadByte()
		if err != io.EOF {
			return b, err
		}
		// discard the reader and optionally close it
		if c, ok := mr.readers[0].(io.Closer); ok {
			c.Close()
		}
		mr.readers = mr.readers[1:]
	}
	return 0, io.EOF
}

func (mr *multiReader) pushReader(r io.Reader) {
	if br := newByteReader(r); br != nil {
		mr.readers = append([]io.ByteReader{br}, mr.readers...)
	}
}

// ReaderInput returns an InHandler that reads bytes from r.
func ReaderInput(r io.Reader) InHandler {
	br := newByteReader(r)
	if br == nil {
		return BytesInput()
	}
	return br.ReadByte
}

// BufferedReaderInput returns an InHandler that reads bytes from a buffered
// reader wrapping r. Use it for files or pipes that are read entirely by the
// VM.
func BufferedReaderInput(r io.Reader) InHandler {
	return bufio.NewReader(r).ReadByte
}

// BytesInput returns an InHandler that returns the given bytes in order, then
// io.EOF.
func BytesInput(b ...byte) InHandler {
	return func() (byte, error) {
		if len(b) == 0 {
			return 0, io.EOF
		}
		v := b[0]
		b = b[1:]
		return v, nil
	}
}

// WriterOutput returns an OutHandler that writes text to w.
func WriterOutput(w io.Writer) OutHandler {
	return func(text string) error {
		_, err := io.WriteString(w, text)
		return err
	}
}

// DiscardOutput is an OutHandler that discards all text.
func DiscardOutput(string) error { return nil }
