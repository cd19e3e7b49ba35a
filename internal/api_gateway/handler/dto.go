package handler

// CreateCompanyRequest represents a request to register a new company
type CreateCompanyRequest struct {
	Name      string `json:"name" binding:"required"`
	BinIIN    string `json:"bin_iin" binding:"required,len=12"`
	TaxRegime string `json:"tax_regime" binding:"required,oneof=USN OSN"`
	Currency  string `json:"currency" binding:"required,len=3"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BinIIN    string `json:"bin_iin"`
	TaxRegime string `json:"tax_regime"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ExtractedFieldsResponse represents extraction results on a document
type ExtractedFieldsResponse struct {
	Category     string  `json:"category"`
	Amount       int64   `json:"amount"`
	Currency     string  `json:"currency"`
	Date         string  `json:"date"`
	Counterparty string  `json:"counterparty,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID        string                   `json:"id"`
	CompanyID string                   `json:"company_id"`
	FileName  string                   `json:"file_name"`
	FileSize  int64                    `json:"file_size"`
	MimeType  string                   `json:"mime_type"`
	Status    string                   `json:"status"`
	Extracted *ExtractedFieldsResponse `json:"extracted,omitempty"`
	CreatedAt string                   `json:"created_at"`
	UpdatedAt string                   `json:"updated_at"`
}

// TransactionResponse represents a bank transaction in API responses
type TransactionResponse struct {
	ID                string `json:"id"`
	CompanyID         string `json:"company_id"`
	TransactionDate   string `json:"transaction_date"`
	Description       string `json:"description,omitempty"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	IsMatched         bool   `json:"is_matched"`
	MatchedDocumentID string `json:"matched_document_id,omitempty"`
	CreatedAt         string `json:"created_at"`
}

// RejectedRowResponse reports one statement row the importer refused
type RejectedRowResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResultResponse summarizes a statement import
type ImportResultResponse struct {
	Accepted int                   `json:"accepted"`
	Rejected []RejectedRowResponse `json:"rejected"`
}

// EntryResponse represents a double-entry record in API responses
type EntryResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	ConfirmedBy   string `json:"confirmed_by,omitempty"`
	ConfirmedAt   string `json:"confirmed_at,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// AuditRecordResponse represents an audit trail record in API responses
type AuditRecordResponse struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Action        string      `json:"action"`
	EntityType    string      `json:"entity_type"`
	EntityID      string      `json:"entity_id"`
	Detail        interface{} `json:"detail,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	CreatedAt     string      `json:"created_at"`
}

// ChatRequest represents an assistant chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
