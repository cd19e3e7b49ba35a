package document

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyFileName       = errors.New("file name cannot be empty")
	ErrFileTooLarge        = errors.New("file exceeds the 10MB upload limit")
	ErrUnsupportedMimeType = errors.New("only PDF, JPEG and PNG uploads are supported")
)

// MaxFileSize is the upload size limit in bytes
const MaxFileSize = 10 << 20

// allowedMimeTypes are the media types accepted at upload time
var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// Status is the document processing lifecycle state. Transitions are monotonic
// along uploaded -> processing -> done|error; a document in error may be
// re-queued, which restarts the pipeline from extraction.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// ExtractedFields are the structured fields produced by the extraction service.
// They are present on a document iff its status is done.
type ExtractedFields struct {
	Category     shared.DocumentCategory `json:"category"`
	Amount       int64                   `json:"amount"` // Absolute value, minor units
	Currency     string                  `json:"currency"`
	Date         time.Time               `json:"date"`
	Counterparty string                  `json:"counterparty"`
	Confidence   float64                 `json:"confidence"` // In [0,1]
}

// Document represents an uploaded financial record (receipt, invoice, ...)
type Document struct {
	ID         uuid.UUID        `json:"id"`
	CompanyID  uuid.UUID        `json:"company_id"`
	UploadedBy uuid.UUID        `json:"uploaded_by"`
	FileName   string           `json:"file_name"`
	FileRef    string           `json:"file_ref"` // Storage reference, opaque to the domain
	FileSize   int64            `json:"file_size"`
	MimeType   string           `json:"mime_type"`
	Status     Status           `json:"status"`
	Extracted  *ExtractedFields `json:"extracted,omitempty"`
	Parsed     json.RawMessage  `json:"parsed,omitempty"` // Raw extraction payload, kept for audit
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewDocument creates a document in uploaded status, enforcing the upload
// size and media-type limits
func NewDocument(companyID, uploadedBy uuid.UUID, fileName, fileRef, mimeType string, fileSize int64) (*Document, error) {
	if fileName == "" {
		return nil, ErrEmptyFileName
	}
	if fileSize > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return nil, ErrUnsupportedMimeType
	}

	now := time.Now()
	return &Document{
		ID:         uuid.New(),
		CompanyID:  companyID,
		UploadedBy: uploadedBy,
		FileName:   fileName,
		FileRef:    fileRef,
		FileSize:   fileSize,
		MimeType:   mimeType,
		Status:     StatusUploaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Reconcilable reports whether the document may enter the pipeline: fresh
// uploads and failed documents being re-triggered.
func (d *Document) Reconcilable() bool {
	return d.Status == StatusUploaded || d.Status == StatusError
}

// ApplyExtraction records the extraction result and moves the document to done
func (d *Document) ApplyExtraction(fields *ExtractedFields, raw json.RawMessage) {
	d.Extracted = fields
	d.Parsed = raw
	d.Status = StatusDone
	d.UpdatedAt = time.Now()
}
