// Package importer parses bank statement CSV feeds into bank transactions.
// Malformed rows are collected and reported per row; they never abort the
// rest of the batch.
package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/company"
)

// ErrEmptyBatch is returned when the input yields no data rows at all,
// either because it is not parseable as CSV or because only a header is
// present.
var ErrEmptyBatch = errors.New("statement contains no data rows")

// RejectReason is the per-row validation failure code reported to the caller
type RejectReason string

const (
	ReasonInvalidDate   RejectReason = "INVALID_DATE"
	ReasonInvalidAmount RejectReason = "INVALID_AMOUNT"
	ReasonMissingFields RejectReason = "MISSING_FIELDS"
)

// RejectedRow identifies a statement row that failed validation
type RejectedRow struct {
	Line   int          `json:"line"` // 1-based, header included
	Row    []string     `json:"row"`
	Reason RejectReason `json:"reason"`
}

// Result is the outcome of a statement import: validated transactions plus
// the rows that were turned away
type Result struct {
	Accepted []*banktxn.Transaction `json:"accepted"`
	Rejected []RejectedRow          `json:"rejected"`
}

// dateLayouts are the statement date formats accepted in order of preference
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// Importer parses bank statement feeds. Row shape is
// date,description,amount[,currency]; currency falls back to the company's
// base currency when omitted.
type Importer struct {
	logger *slog.Logger
}

func NewImporter(logger *slog.Logger) *Importer {
	return &Importer{logger: logger}
}

// ParseStatement reads a CSV statement and validates it row by row. The
// first row is treated as a header and skipped. Only a completely empty or
// unparseable input fails the batch as a whole (ErrEmptyBatch); otherwise a
// partial result with both lists is returned.
func (i *Importer) ParseStatement(reader io.Reader, comp *company.Company, importedBy uuid.UUID) (*Result, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1 // Row width is validated per row

	if _, err := csvReader.Read(); err != nil {
		return nil, ErrEmptyBatch
	}

	result := &Result{}
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{Line: line, Row: record, Reason: ReasonMissingFields})
			continue
		}

		txn, reason := i.parseRow(record, comp, importedBy)
		if reason != "" {
			result.Rejected = append(result.Rejected, RejectedRow{Line: line, Row: append([]string(nil), record...), Reason: reason})
			continue
		}
		result.Accepted = append(result.Accepted, txn)
	}

	if len(result.Accepted) == 0 && len(result.Rejected) == 0 {
		return nil, ErrEmptyBatch
	}

	i.logger.Info("Parsed bank statement",
		"company_id", comp.ID.String(),
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
	)

	return result, nil
}

// parseRow validates one statement row. The returned reason is empty on
// success.
func (i *Importer) parseRow(record []string, comp *company.Company, importedBy uuid.UUID) (*banktxn.Transaction, RejectReason) {
	if len(record) < 3 {
		return nil, ReasonMissingFields
	}

	rawDate := strings.TrimSpace(record[0])
	description := strings.TrimSpace(record[1])
	rawAmount := strings.TrimSpace(record[2])

	if rawDate == "" || rawAmount == "" {
		return nil, ReasonMissingFields
	}

	date, ok := parseDate(rawDate)
	if !ok {
		return nil, ReasonInvalidDate
	}

	amount, ok := parseAmountMinor(rawAmount)
	if !ok || amount == 0 {
		return nil, ReasonInvalidAmount
	}

	currency := comp.Currency
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		currency = strings.ToUpper(strings.TrimSpace(record[3]))
	}
	if len(currency) != 3 {
		return nil, ReasonMissingFields
	}

	txn, err := banktxn.NewTransaction(comp.ID, importedBy, date, description, amount, currency)
	if err != nil {
		return nil, ReasonInvalidAmount
	}

	return txn, ""
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmountMinor converts a decimal amount string into minor units.
// Both "." and "," are accepted as the decimal separator; at most two
// fractional digits are allowed.
func parseAmountMinor(raw string) (int64, bool) {
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, ",", ".")

	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "+")
	if raw == "" {
		return 0, false
	}

	whole := raw
	frac := ""
	if idx := strings.Index(raw, "."); idx >= 0 {
		whole = raw[:idx]
		frac = raw[idx+1:]
		if strings.Contains(frac, ".") || len(frac) > 2 {
			return 0, false
		}
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}

	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false
	}

	// The minor-unit conversion must not wrap around
	if major > (math.MaxInt64-cents)/100 {
		return 0, false
	}

	amount := major*100 + cents
	if negative {
		amount = -amount
	}
	return amount, true
}
