package api

const (
	// DefaultFilePermissions for temp directory creation
	DefaultFilePermissions = 0755

	// MaxErrorLength truncates error messages returned to clients
	MaxErrorLength = 200

	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"

	// RemovedCountHeader reports how many occurrences were masked on file downloads
	RemovedCountHeader = "X-Removed-Count"

	// NoWatermarksMessage is returned when nothing qualifies as a watermark
	NoWatermarksMessage = "No consistent watermarks detected."

	// ProcessedMessage is returned by the upload page endpoint on success
	ProcessedMessage = "Watermarks removed successfully!"

	// CleanPrefix is prepended to the upload page's download name
	CleanPrefix = "clean_"
)

// Multipart fields carrying the uploaded document
const (
	FieldPDF  = "pdf"
	FieldFile = "file"
)

// Response formats for the remove endpoint
const (
	FormatFile   = "file"
	FormatBase64 = "base64"
)
