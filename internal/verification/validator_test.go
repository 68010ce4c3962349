package verification

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePNG encodes a w x h PNG and pads it with trailing zeros up to padTo
// bytes. The decoder stops at the IEND chunk, so padding only affects the
// reported size.
func makePNG(t *testing.T, w, h, padTo int) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	require.NoError(t, png.Encode(&buf, img))

	data := buf.Bytes()
	if len(data) < padTo {
		data = append(data, make([]byte, padTo-len(data))...)
	}
	return data
}

func pdfBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.4\n")
	return data
}

func TestValidateAcceptsWellNamedPDF(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.pdf", pdfBytes(600_000))

	result := v.Validate(context.Background(), doc)

	assert.True(t, result.Valid)
	assert.Empty(t, result.RejectionReason)
	conf, _ := result.Confidence.Float64()
	assert.InDelta(t, 100.0, conf, 0.01)
	assert.NotEmpty(t, result.Reasons)
}

func TestValidateRejectsDisallowedExtension(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("grades.txt", pdfBytes(600_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "Invalid file extension")
	assert.True(t, result.Confidence.IsZero())
}

func TestValidateRejectsTinyFile(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("random.png", make([]byte, 5_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "File too small")
	assert.True(t, result.Confidence.IsZero())
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewDocument("grades.pdf", 11_000_000, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("%PDF-1.4"))), nil
	})

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "File too large")
}

func TestValidateRejectsCorruptSignature(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("grades_transcript.pdf", make([]byte, 100_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "Invalid file format")
}

func TestValidateRequiresGradeKeyword(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("document.pdf", pdfBytes(600_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "grade-related keywords")
	// Score 60 of 110 gives 54.55% confidence, minus the 30-point penalty.
	conf, _ := result.Confidence.Float64()
	assert.InDelta(t, 24.55, conf, 0.01)
}

func TestValidateRejectsHighlySuspiciousName(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("copy_of_grades.pdf", pdfBytes(600_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "suspicious pattern")
	assert.True(t, result.Confidence.IsZero())
}

func TestValidateAcceptsReadableImage(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("TCU_Grades_2025_Midterm.png", makePNG(t, 1000, 1400, 600_000))

	result := v.Validate(context.Background(), doc)

	assert.True(t, result.Valid)
	conf, _ := result.Confidence.Float64()
	assert.InDelta(t, 100.0, conf, 0.01)
}

func TestValidateRejectsIconSizedImage(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("grades.png", makePNG(t, 100, 100, 60_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "Image too small")
}

func TestValidateRejectsUnreadableImage(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("grades.png", makePNG(t, 300, 350, 60_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "readable text")
}

func TestValidateRejectsExtremeAspectRatio(t *testing.T) {
	v := NewDocumentValidator(time.Second)
	doc := NewBytesDocument("grades_semester.png", makePNG(t, 2000, 400, 60_000))

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "aspect ratio")
}

// slowReader serves the PNG signature immediately, then blocks until the
// release channel closes. It drives the decode-timeout path.
type slowReader struct {
	header  []byte
	pos     int
	release chan struct{}
}

func (s *slowReader) Read(p []byte) (int, error) {
	if s.pos < len(s.header) {
		n := copy(p, s.header[s.pos:])
		s.pos += n
		return n, nil
	}
	<-s.release
	return 0, io.EOF
}

func (s *slowReader) Close() error { return nil }

func TestValidateTimesOutOnStalledDecode(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	v := NewDocumentValidator(20 * time.Millisecond)
	doc := NewDocument("grades.png", 60_000, func() (io.ReadCloser, error) {
		return &slowReader{header: pngSignature, release: release}, nil
	})

	result := v.Validate(context.Background(), doc)

	assert.False(t, result.Valid)
	assert.Contains(t, result.RejectionReason, "timed out")
	assert.True(t, result.Confidence.IsZero())
}

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, formatPNG, sniffFormat(pngSignature))
	assert.Equal(t, formatJPEG, sniffFormat([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, formatPDF, sniffFormat([]byte("%PDF-1.7")))
	assert.Equal(t, formatUnknown, sniffFormat([]byte("GIF89a")))
}

func TestDocumentExtension(t *testing.T) {
	assert.Equal(t, "pdf", NewBytesDocument("Grades.PDF", nil).Extension())
	assert.Equal(t, "jpeg", NewBytesDocument("scan.jpeg", nil).Extension())
	assert.Equal(t, "", NewBytesDocument("noext", nil).Extension())
}
