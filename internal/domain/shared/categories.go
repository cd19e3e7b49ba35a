package shared

import "strings"

// DocumentCategory classifies an uploaded financial document
type DocumentCategory string

const (
	CategoryInvoice   DocumentCategory = "invoice"
	CategoryReceipt   DocumentCategory = "receipt"
	CategoryContract  DocumentCategory = "contract"
	CategoryStatement DocumentCategory = "statement"
	CategoryOther     DocumentCategory = "other"
)

// Categories lists every known document category
var Categories = []DocumentCategory{
	CategoryInvoice,
	CategoryReceipt,
	CategoryContract,
	CategoryStatement,
	CategoryOther,
}

// ParseCategory normalizes a raw category string, falling back to CategoryOther
// for values the extraction service invents
func ParseCategory(raw string) DocumentCategory {
	switch DocumentCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryInvoice:
		return CategoryInvoice
	case CategoryReceipt:
		return CategoryReceipt
	case CategoryContract:
		return CategoryContract
	case CategoryStatement:
		return CategoryStatement
	default:
		return CategoryOther
	}
}

// Direction is the cash-flow direction of a movement: inflow (money in) or
// outflow (money out)
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Directions lists both cash-flow directions
var Directions = []Direction{DirectionInflow, DirectionOutflow}

// DirectionOfAmount derives the direction from a signed amount in minor units
func DirectionOfAmount(amount int64) Direction {
	if amount < 0 {
		return DirectionOutflow
	}
	return DirectionInflow
}
