package api

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pdf_watermark/logger"
	"pdf_watermark/pdf"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// upload is a PDF received from a multipart form and stored under TempDir
type upload struct {
	path     string
	filename string
}

func (u *upload) cleanup() { os.Remove(u.path) }

func HandleAnalyzeWatermarks(c *gin.Context, config *Config) {
	opts, err := parseOptions(c, config.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	up, ok := receivePDF(c, config, FieldPDF)
	if !ok {
		return
	}
	defer up.cleanup()

	analysis, err := config.Cleaner.Analyze(c.Request.Context(), pdf.Source{Path: up.path}, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	status, message := pdf.StatusSuccess, fmt.Sprintf("Detected %d watermark(s)", len(analysis.Detections))
	if !analysis.Found() {
		status, message = pdf.StatusNoWatermarks, NoWatermarksMessage
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"message":       message,
		"filename":      up.filename,
		"total_pages":   analysis.TotalPages,
		"sampled_pages": analysis.SampledPages,
		"skipped_pages": analysis.Skipped,
		"watermarks":    analysis.Detections,
	})
}

func HandleRemoveWatermarks(c *gin.Context, config *Config) {
	opts, err := parseOptions(c, config.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	format := strings.ToLower(c.DefaultPostForm("format", FormatFile))
	if format != FormatFile && format != FormatBase64 {
		respondError(c, pdf.Errorf(pdf.ErrorCodeInvalidParameter, "format", "unsupported format %q (use file or base64)", format))
		return
	}
	var candidates []pdf.Candidate
	supplied := strings.TrimSpace(c.PostForm("watermarks")) != ""
	if supplied {
		if candidates, err = pdf.ParseCandidates([]byte(c.PostForm("watermarks"))); err != nil {
			respondError(c, err)
			return
		}
	}

	up, ok := receivePDF(c, config, FieldPDF)
	if !ok {
		return
	}
	defer up.cleanup()

	outFile := filepath.Join(config.TempDir, "output_"+generateUniqueID()+"_cleaned.pdf")
	defer os.Remove(outFile)

	ctx := c.Request.Context()
	var report *pdf.Report
	if supplied {
		report, err = config.Cleaner.Remove(ctx, pdf.Source{Path: up.path}, outFile, candidates)
	} else {
		report, err = config.Cleaner.Clean(ctx, pdf.Source{Path: up.path}, outFile, opts)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if report.Status == pdf.StatusNoWatermarks {
		c.JSON(http.StatusOK, gin.H{
			"status":        report.Status,
			"message":       NoWatermarksMessage,
			"removed_count": 0,
		})
		return
	}

	filename := outputFilename(up.filename, "cleaned")
	removed := report.Removal.Removed
	logger.C(ctx).Info().Str("filename", up.filename).Int("removed", removed).Msg("watermarks removed")

	if format == FormatBase64 {
		respondBase64(c, outFile, filename, fmt.Sprintf("Removed %d watermark occurrence(s)", removed), removed)
		return
	}

	// Verify output file exists before sending
	if _, err := os.Stat(outFile); err != nil {
		respondError(c, pdf.Wrap(err, pdf.ErrorCodeSaveFailure, "read output", "operation did not produce output file"))
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header(RemovedCountHeader, strconv.Itoa(removed))
	c.File(outFile)
}

// HandleProcess backs the upload page: it detects and removes watermarks in
// the "file" upload and always answers with the cleaned PDF as base64.
func HandleProcess(c *gin.Context, config *Config) {
	opts, err := parseOptions(c, config.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	up, ok := receivePDF(c, config, FieldFile)
	if !ok {
		return
	}
	defer up.cleanup()

	outFile := filepath.Join(config.TempDir, "output_"+generateUniqueID()+"_cleaned.pdf")
	defer os.Remove(outFile)

	ctx := c.Request.Context()
	report, err := config.Cleaner.Clean(ctx, pdf.Source{Path: up.path}, outFile, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	if report.Status == pdf.StatusNoWatermarks {
		c.JSON(http.StatusOK, gin.H{
			"status":  report.Status,
			"message": NoWatermarksMessage,
		})
		return
	}
	removed := report.Removal.Removed
	logger.C(ctx).Info().Str("filename", up.filename).Int("removed", removed).Msg("watermarks removed")
	respondBase64(c, outFile, sanitizeFilename(CleanPrefix+up.filename), ProcessedMessage, removed)
}

// respondBase64 sends the cleaned file inline as {status, message, file_base64, filename, removed_count}
func respondBase64(c *gin.Context, outFile, filename, message string, removed int) {
	data, err := os.ReadFile(outFile)
	if err != nil {
		respondError(c, pdf.Wrap(err, pdf.ErrorCodeSaveFailure, "read output", "cleaned file missing"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        pdf.StatusSuccess,
		"message":       message,
		"file_base64":   base64.StdEncoding.EncodeToString(data),
		"filename":      filename,
		"removed_count": removed,
	})
}

// parseOptions applies the optional sensitivity, sample_pages and pages form fields to defaults
func parseOptions(c *gin.Context, defaults pdf.Options) (pdf.Options, error) {
	opts := defaults
	if v := strings.TrimSpace(c.PostForm("sensitivity")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, pdf.Errorf(pdf.ErrorCodeInvalidParameter, "sensitivity", "invalid number %q", v)
		}
		opts.ThresholdRatio = f
	}
	if v := strings.TrimSpace(c.PostForm("sample_pages")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, pdf.Errorf(pdf.ErrorCodeInvalidParameter, "sample_pages", "invalid integer %q", v)
		}
		opts.SampleBudget = n
	}
	if v := strings.TrimSpace(c.PostForm("pages")); v != "" {
		pages, err := pdf.ParsePageSpecifier(v)
		if err != nil {
			return opts, err
		}
		opts.Pages = pages
	}
	return opts, opts.Validate()
}

// receivePDF validates the form file named field and stores it in TempDir.
// It writes the error response itself and returns false on failure.
func receivePDF(c *gin.Context, config *Config, field string) (*upload, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file provided", "code": pdf.ErrorCodeInvalidParameter.String()})
		return nil, false
	}
	defer file.Close()

	if err := validatePDFFile(file, header, config.MaxFileSize); err != nil {
		respondError(c, pdf.Wrap(err, pdf.ErrorCodeInvalidDocument, "upload", "rejected upload"))
		return nil, false
	}
	if err := ensureTempDir(config.TempDir); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp directory", "code": pdf.ErrorCodeUnknown.String()})
		return nil, false
	}

	inFile := filepath.Join(config.TempDir, "input_"+generateUniqueID()+".pdf")
	out, err := os.Create(inFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temp file", "code": pdf.ErrorCodeUnknown.String()})
		return nil, false
	}
	_, err = out.ReadFrom(file)
	out.Close()
	if err != nil {
		os.Remove(inFile) // Clean up on error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save input file", "code": pdf.ErrorCodeUnknown.String()})
		return nil, false
	}
	return &upload{path: inFile, filename: sanitizeFilename(header.Filename)}, true
}

// statusFor maps engine error codes to HTTP statuses
func statusFor(code pdf.ErrorCode) int {
	switch code {
	case pdf.ErrorCodeInvalidDocument, pdf.ErrorCodeInvalidParameter:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "code"} with a status derived from err
func respondError(c *gin.Context, err error) {
	code := pdf.CodeOf(err)
	status := statusFor(code)
	msg := err.Error()
	if len(msg) > MaxErrorLength {
		msg = msg[:MaxErrorLength] + "..."
	}
	if status >= http.StatusInternalServerError {
		logger.C(c.Request.Context()).Error().Err(err).Msg("PDF operation error")
	}
	c.JSON(status, gin.H{"error": msg, "code": code.String()})
}

// outputFilename derives the download name from the uploaded one
func outputFilename(original, suffix string) string {
	filename := "document_" + suffix + ".pdf"
	if original != "" {
		// Remove .pdf extension if present, add suffix
		if strings.HasSuffix(strings.ToLower(original), ".pdf") {
			filename = original[:len(original)-4] + "_" + suffix + ".pdf"
		} else {
			filename = original + "_" + suffix + ".pdf"
		}
	}
	return sanitizeFilename(filename)
}

// ensureTempDir creates the temp directory if it doesn't exist
func ensureTempDir(tempDir string) error {
	return os.MkdirAll(tempDir, DefaultFilePermissions)
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	// Remove directory separators and path traversal attempts
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)

	// If empty after sanitization, use default
	if filename == "" || filename == "." {
		filename = "document.pdf"
	}

	return filename
}

// generateUniqueID generates a unique identifier for temp files
func generateUniqueID() string {
	return uuid.NewString()
}

// validatePDFFile checks the size limit and the %PDF header
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed %d bytes", header.Size, maxSize)
	}

	// Read first 4 bytes to check PDF header
	buffer := make([]byte, 4)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file header: %v", err)
	}

	if n < 4 || string(buffer[:4]) != "%PDF" {
		return fmt.Errorf("invalid PDF file: header does not match")
	}

	// Seek back to beginning for subsequent reads
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %v", err)
	}

	return nil
}
