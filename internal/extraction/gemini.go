package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/sana-bookkeeping/internal/platform/storage"
)

const extractionPrompt = "You are a bookkeeping document parser for small-business receipts, invoices and contracts.\n\n" +
	"Task:\n" +
	"- Read the attached document and extract its key financial fields.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"category\": string, one of \"invoice\", \"receipt\", \"contract\", \"statement\", \"other\"\n" +
	"- \"amount\": number, the total amount in major currency units, always positive\n" +
	"- \"currency\": string, ISO 4217 code (e.g. \"KZT\")\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
	"- \"counterparty\": string, the other party's name, or null\n" +
	"- \"confidence\": number between 0 and 1, your confidence in the extraction\n\n" +
	"Rules:\n" +
	"- Use the document total, not a line item.\n" +
	"- If the currency is not stated, infer it from context.\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// modelClient is the slice of the genai client the extractor uses, kept as an
// interface so tests can stub the model.
type modelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor implements Extractor on top of the Gemini API. The document
// file is fetched from storage and sent inline with the prompt.
type GeminiExtractor struct {
	model   modelClient
	files   storage.Storage
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiExtractor creates the production extraction adapter. Credentials
// come from the environment (GEMINI_API_KEY or application default
// credentials), matching the genai client's own lookup.
func NewGeminiExtractor(ctx context.Context, logger *slog.Logger, cfg *config.ExtractionConfig, files storage.Storage) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiExtractor{
		model:   client.Models,
		files:   files,
		name:    cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Extract reads the document file from storage, sends it to the model and
// parses the strict-JSON response. Any failure is wrapped in
// ErrExtractionFailed; fields are never partially populated.
func (g *GeminiExtractor) Extract(ctx context.Context, doc *document.Document) (*document.ExtractedFields, []byte, error) {
	data, err := g.files.Read(ctx, doc.FileRef)
	if err != nil {
		return nil, nil, ErrExtractionFailed{Cause: fmt.Errorf("reading stored file: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := g.model.GenerateContent(ctx, g.name, contents, nil)
	if err != nil {
		g.logger.Error("Extraction model call failed",
			"document_id", doc.ID.String(),
			"model", g.name,
			"error", err,
		)
		return nil, nil, ErrExtractionFailed{Cause: err}
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, nil, ErrExtractionFailed{Cause: fmt.Errorf("empty response from model")}
	}

	fields, raw, err := parsePayload(rawText)
	if err != nil {
		g.logger.Error("Extraction response unparseable",
			"document_id", doc.ID.String(),
			"error", err,
		)
		return nil, nil, ErrExtractionFailed{Cause: err}
	}

	return fields, raw, nil
}

// payload is the wire shape of the model's JSON response
type payload struct {
	Category     string   `json:"category"`
	Amount       float64  `json:"amount"`
	Currency     string   `json:"currency"`
	Date         string   `json:"date"`
	Counterparty *string  `json:"counterparty"`
	Confidence   *float64 `json:"confidence"`
}

// parsePayload converts the raw model output into extracted fields along
// with the cleaned JSON for the audit record
func parsePayload(rawText string) (*document.ExtractedFields, []byte, error) {
	clean := cleanModelJSON(rawText)

	var p payload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, nil, fmt.Errorf("unmarshal model response: %w", err)
	}

	if p.Amount < 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return nil, nil, fmt.Errorf("model returned invalid amount: %v", p.Amount)
	}

	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("model returned invalid date %q: %w", p.Date, err)
	}

	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if len(currency) != 3 {
		return nil, nil, fmt.Errorf("model returned invalid currency %q", p.Currency)
	}

	confidence := 0.0
	if p.Confidence != nil {
		confidence = math.Max(0, math.Min(1, *p.Confidence))
	}

	counterparty := ""
	if p.Counterparty != nil {
		counterparty = strings.TrimSpace(*p.Counterparty)
	}

	fields := &document.ExtractedFields{
		Category:     shared.ParseCategory(p.Category),
		Amount:       int64(math.Round(p.Amount * 100)),
		Currency:     currency,
		Date:         date,
		Counterparty: counterparty,
		Confidence:   confidence,
	}

	return fields, []byte(clean), nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
