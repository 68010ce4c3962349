// internal/verification/document.go
package verification

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the read-only view of an uploaded grade document that the
// pipeline works with. It only ever needs the name, the size and byte-range
// reads; it never talks to the storage backend directly.
type Document struct {
	Name string
	Size int64

	open func() (io.ReadCloser, error)
}

func NewDocument(name string, size int64, open func() (io.ReadCloser, error)) *Document {
	return &Document{Name: name, Size: size, open: open}
}

// NewBytesDocument wraps an in-memory payload, mostly for tests and small
// uploads that were already buffered.
func NewBytesDocument(name string, data []byte) *Document {
	return &Document{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func (d *Document) Open() (io.ReadCloser, error) {
	if d.open == nil {
		return nil, fmt.Errorf("document %q has no content", d.Name)
	}
	return d.open()
}

// Header returns up to n leading bytes for signature sniffing.
func (d *Document) Header(n int) ([]byte, error) {
	rc, err := d.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(rc, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}

// Extension returns the lower-cased extension without the leading dot.
func (d *Document) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name)), ".")
}

// File signatures the validator recognizes.
var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pdfSignature  = []byte("%PDF")
)

type documentFormat int

const (
	formatUnknown documentFormat = iota
	formatPNG
	formatJPEG
	formatPDF
)

func sniffFormat(header []byte) documentFormat {
	switch {
	case bytes.HasPrefix(header, pngSignature):
		return formatPNG
	case bytes.HasPrefix(header, jpegSignature):
		return formatJPEG
	case bytes.HasPrefix(header, pdfSignature):
		return formatPDF
	}
	return formatUnknown
}
