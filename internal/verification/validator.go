// internal/verification/validator.go
package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
)

// Validation thresholds. The score budget is the theoretical maximum a
// document can collect across every check.
const (
	minDocumentSize = 50_000
	maxDocumentSize = 10_000_000

	maxValidationScore  = 110
	acceptanceThreshold = 70.0

	minImageDimension    = 200
	minReadableDimension = 400
	maxImageDimension    = 5000
	maxAspectRatio       = 4.0
	squareTolerance      = 10

	headerSniffLen = 8
)

var allowedExtensions = map[string]bool{
	"pdf": true, "png": true, "jpg": true, "jpeg": true,
}

// Grade-document vocabulary. At least one of these must appear in the
// filename for acceptance, no matter how high the score is.
var gradeKeywords = []string{
	"grade", "grades", "gwa", "swa", "transcript", "record", "academic",
	"semester", "semestral", "report", "card", "tcu", "university",
	"student", "result", "evaluation", "assessment", "final", "midterm",
}

// Generic-image terms that lower the score without rejecting outright.
var suspiciousPatterns = []string{
	"screenshot", "image", "photo", "picture", "img", "pic",
	"random", "test", "sample", "untitled", "new", "copy",
}

// Any of these in the filename rejects unconditionally.
var highlySuspiciousPatterns = []string{
	"img_", "image", "photo", "picture", "screenshot", "snap",
	"untitled", "new image", "download", "copy", "random",
}

var academicTerms = []string{
	"midterm", "final", "sem", "semester", "2024", "2025", "1st", "2nd",
}

// ValidationResult reports whether a document passed the grade-document
// heuristics. Confidence is 0..100; Reasons records the contribution of
// every check for the audit log.
type ValidationResult struct {
	Valid           bool
	Confidence      decimal.Decimal
	Reasons         []string
	RejectionReason string
}

// DocumentValidator scores an uploaded file against heuristics that favor
// rejecting a non-grade image over accepting one. A single hard failure
// short-circuits; soft checks accumulate points.
type DocumentValidator struct {
	decodeTimeout time.Duration
}

func NewDocumentValidator(decodeTimeout time.Duration) *DocumentValidator {
	if decodeTimeout <= 0 {
		decodeTimeout = 5 * time.Second
	}
	return &DocumentValidator{decodeTimeout: decodeTimeout}
}

func rejection(confidence float64, reason string) ValidationResult {
	return ValidationResult{
		Confidence:      decimal.NewFromFloat(confidence).Round(2),
		RejectionReason: reason,
	}
}

func (v *DocumentValidator) Validate(ctx context.Context, doc *Document) ValidationResult {
	score := 0
	var reasons []string
	filename := strings.ToLower(doc.Name)

	// 1. File extension
	ext := doc.Extension()
	if !allowedExtensions[ext] {
		return rejection(0, fmt.Sprintf(
			"Invalid file extension: %s. Only PDF, PNG, JPG files are allowed for grade documents.", ext))
	}
	score += 20
	reasons = append(reasons, fmt.Sprintf("Valid file extension: %s", ext))

	// 2. File size window
	if doc.Size < minDocumentSize {
		return rejection(0, fmt.Sprintf(
			"File too small (%d bytes). Grade documents are typically larger than 50KB; this appears to be a low-quality image or icon.", doc.Size))
	}
	if doc.Size > maxDocumentSize {
		return rejection(0, fmt.Sprintf(
			"File too large (%d bytes). Grade documents should be under 10MB.", doc.Size))
	}
	score += 15
	reasons = append(reasons, fmt.Sprintf("Appropriate file size: %d bytes", doc.Size))

	// 3. Grade-keyword matches in the filename, capped at 30 points
	keywordMatches := countMatches(filename, gradeKeywords)
	if keywordMatches >= 1 {
		score += min(keywordMatches*10, 30)
		reasons = append(reasons, fmt.Sprintf("Grade-related keywords found in filename: %d", keywordMatches))
	} else {
		reasons = append(reasons, "No grade-related keywords in filename")
	}

	// 4. File signature
	header, err := doc.Header(headerSniffLen)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("File header validation error: %v", err))
		score += 5
	} else {
		switch sniffFormat(header) {
		case formatPNG:
			score += 20
			reasons = append(reasons, "Valid PNG file signature detected")
		case formatJPEG:
			score += 20
			reasons = append(reasons, "Valid JPEG file signature detected")
		case formatPDF:
			score += 25
			reasons = append(reasons, "Valid PDF file signature detected")
		default:
			return rejection(0, "Invalid file format - file appears to be corrupted or not a valid image/PDF.")
		}
	}

	// 5. Image content analysis for image extensions
	if ext == "png" || ext == "jpg" || ext == "jpeg" {
		width, height, err := v.decodeDimensions(ctx, doc)
		switch {
		case err == context.DeadlineExceeded || err == context.Canceled:
			return rejection(0, "Image analysis timed out; the file could not be verified as a grade document.")
		case err != nil:
			reasons = append(reasons, fmt.Sprintf("Image analysis error: %v", err))
			score += 2
		default:
			if width < minImageDimension || height < minImageDimension {
				return rejection(0, fmt.Sprintf(
					"Image too small (%dx%d). Grade documents should be at least 200x200 pixels; this appears to be an icon.", width, height))
			}
			if width < minReadableDimension && height < minReadableDimension {
				return rejection(0, fmt.Sprintf(
					"Image dimensions too small (%dx%d). Grade documents need at least 400x400 pixels to contain readable text.", width, height))
			}

			if width > maxImageDimension || height > maxImageDimension {
				reasons = append(reasons, fmt.Sprintf("Very large image (%dx%d) - may affect processing", width, height))
			} else {
				score += 10
				reasons = append(reasons, fmt.Sprintf("Appropriate image dimensions: %dx%d", width, height))
			}

			aspectRatio := float64(max(width, height)) / float64(min(width, height))
			if aspectRatio > maxAspectRatio {
				return rejection(0, fmt.Sprintf(
					"Unusual aspect ratio (%.2f). Grade documents have balanced portrait or landscape dimensions.", aspectRatio))
			}
			score += 15
			reasons = append(reasons, fmt.Sprintf("Good aspect ratio: %.2f", aspectRatio))

			// Near-square images are usually random pictures, not documents
			if abs(width-height) < squareTolerance {
				score -= 10
				reasons = append(reasons, "Warning: square image detected (uncommon for grade documents)")
			}
		}
	}

	// 6. Suspicious generic-image terms in the filename
	suspiciousMatches := countMatches(filename, suspiciousPatterns)
	if suspiciousMatches > 0 {
		score -= suspiciousMatches * 5
		reasons = append(reasons, fmt.Sprintf("Suspicious filename patterns detected: %d", suspiciousMatches))
	}

	// 7. Institution and academic-term bonuses
	if strings.Contains(filename, "tcu") || strings.Contains(filename, "tagui") {
		score += 15
		reasons = append(reasons, "TCU-related filename detected")
	}
	if termMatches := countMatches(filename, academicTerms); termMatches > 0 {
		score += min(termMatches*5, 15)
		reasons = append(reasons, fmt.Sprintf("Academic terms found in filename: %d", termMatches))
	}

	confidence := clamp(float64(score)/maxValidationScore*100, 0, 100)

	// A grade keyword in the filename is mandatory regardless of score.
	if keywordMatches == 0 {
		return rejection(clamp(confidence-30, 0, 100),
			"Document filename does not contain grade-related keywords. Please rename your file to include words like 'grades', 'transcript', 'TCU' (e.g. 'TCU_Grades_2025_Midterm.pdf').")
	}

	for _, pattern := range highlySuspiciousPatterns {
		if strings.Contains(filename, pattern) {
			return rejection(0, fmt.Sprintf(
				"Filename contains suspicious pattern '%s'. This appears to be a random image, not a grade document. Please upload your actual TCU grade report.", pattern))
		}
	}

	if confidence < acceptanceThreshold {
		return ValidationResult{
			Confidence: decimal.NewFromFloat(confidence).Round(2),
			Reasons:    reasons,
			RejectionReason: fmt.Sprintf(
				"Document failed strict validation (confidence: %.1f%%). This does not appear to be a grade document; please upload your actual grade report or transcript with a descriptive filename.", confidence),
		}
	}

	return ValidationResult{
		Valid:      true,
		Confidence: decimal.NewFromFloat(confidence).Round(2),
		Reasons:    reasons,
	}
}

// decodeDimensions decodes the image far enough to learn its bounds,
// bounded by the validator timeout. Expiry counts as a validation failure,
// not an internal error.
func (v *DocumentValidator) decodeDimensions(ctx context.Context, doc *Document) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.decodeTimeout)
	defer cancel()

	type dims struct {
		width, height int
		err           error
	}
	result := make(chan dims, 1)

	go func() {
		rc, err := doc.Open()
		if err != nil {
			result <- dims{err: err}
			return
		}
		defer rc.Close()

		img, err := imaging.Decode(rc)
		if err != nil {
			result <- dims{err: err}
			return
		}
		bounds := img.Bounds()
		result <- dims{width: bounds.Dx(), height: bounds.Dy()}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case d := <-result:
		return d.width, d.height, d.err
	}
}

func countMatches(haystack string, needles []string) int {
	count := 0
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
