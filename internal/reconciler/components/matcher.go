package components

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/reconciler/service"
)

// Matcher scores unmatched bank transactions against a processed document.
// Ranking is pure and in-memory; claiming the winner is the caller's job so
// the conditional write can share the entry-creation transaction.
type Matcher struct {
	cfg    *config.MatchingConfig
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger, cfg *config.MatchingConfig) *Matcher {
	return &Matcher{cfg: cfg, logger: logger}
}

// Rank returns the candidates that clear the minimum combined score, best
// first. An empty result means no match, which is an expected outcome.
//
// Disqualifiers are absolute: a currency mismatch or a date outside the
// configured window removes the candidate regardless of the other signals.
// Ties break on score, then date distance, then creation time, so ranking
// is deterministic for identical pools.
func (m *Matcher) Rank(doc *document.Document, pool []*banktxn.Transaction) []service.Candidate {
	if doc.Extracted == nil {
		return nil
	}

	fields := doc.Extracted
	var candidates []service.Candidate

	for _, txn := range pool {
		if txn.IsMatched {
			continue
		}
		if !strings.EqualFold(txn.Currency, fields.Currency) {
			continue
		}

		days := dateDistanceDays(fields.Date, txn.TransactionDate)
		if days > m.cfg.DateWindowDays {
			continue
		}

		amountScore := amountProximity(fields.Amount, txn.AbsAmount())
		dateScore := 1.0 - float64(days)/float64(m.cfg.DateWindowDays+1)
		textScore := textSimilarity(fields.Counterparty, txn.Description)

		total := m.cfg.AmountWeight*amountScore + m.cfg.DateWeight*dateScore + m.cfg.TextWeight*textScore
		weightSum := m.cfg.AmountWeight + m.cfg.DateWeight + m.cfg.TextWeight
		score := total / weightSum

		if score < m.cfg.MinScore {
			continue
		}

		candidates = append(candidates, service.Candidate{
			Transaction:  txn,
			Score:        score,
			DateDistance: days,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].DateDistance != candidates[j].DateDistance {
			return candidates[i].DateDistance < candidates[j].DateDistance
		}
		return candidates[i].Transaction.CreatedAt.Before(candidates[j].Transaction.CreatedAt)
	})

	m.logger.Debug("Ranked match candidates",
		"document_id", doc.ID.String(),
		"pool_size", len(pool),
		"candidates", len(candidates),
	)

	return candidates
}

// amountProximity scores how close the transaction amount is to the
// document amount; exact equality of absolute values scores 1.0
func amountProximity(docAmount, txnAmount int64) float64 {
	if docAmount == txnAmount {
		return 1.0
	}
	larger := math.Max(float64(docAmount), float64(txnAmount))
	if larger == 0 {
		return 0
	}
	diff := math.Abs(float64(docAmount) - float64(txnAmount))
	return math.Max(0, 1.0-diff/larger)
}

// dateDistanceDays returns the whole-day distance between two dates,
// ignoring time-of-day
func dateDistanceDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ad.Sub(bd).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// textSimilarity measures case-insensitive overlap between the document's
// counterparty and the transaction description. A full substring hit scores
// 1.0; otherwise the token overlap ratio is used.
func textSimilarity(counterparty, description string) float64 {
	counterparty = strings.ToLower(strings.TrimSpace(counterparty))
	description = strings.ToLower(description)
	if counterparty == "" || description == "" {
		return 0
	}

	if strings.Contains(description, counterparty) {
		return 1.0
	}

	tokens := strings.Fields(counterparty)
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, token := range tokens {
		if strings.Contains(description, token) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
