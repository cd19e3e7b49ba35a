// Package components holds the building blocks of the reconciliation
// pipeline: the chart-of-accounts mapper, the matcher, the entry
// synthesizer and the audit stager. The service package wires them together.
package components

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sana-bookkeeping/internal/domain/shared"
)

// AccountPair is the (debit, credit) selection for one category/direction
// combination
type AccountPair struct {
	Debit  string `yaml:"debit"`
	Credit string `yaml:"credit"`
}

type mappingKey struct {
	category  shared.DocumentCategory
	direction shared.Direction
}

// AccountMapper deterministically maps a document category and cash-flow
// direction to a double-entry account pair. Codes follow the Kazakh standard
// chart of accounts; an override file can replace any combination.
type AccountMapper struct {
	mapping map[mappingKey]AccountPair
}

// defaultMapping is the built-in chart. 1030 is the current bank account,
// 1210 receivables, 1610 advances paid, 3310 supplier payables, 3510
// advances received, 6010 revenue, 6280 other income, 7210 general expenses,
// 7470 other expenses.
func defaultMapping() map[mappingKey]AccountPair {
	return map[mappingKey]AccountPair{
		{shared.CategoryInvoice, shared.DirectionOutflow}:   {Debit: "3310", Credit: "1030"},
		{shared.CategoryInvoice, shared.DirectionInflow}:    {Debit: "1030", Credit: "1210"},
		{shared.CategoryReceipt, shared.DirectionOutflow}:   {Debit: "7210", Credit: "1030"},
		{shared.CategoryReceipt, shared.DirectionInflow}:    {Debit: "1030", Credit: "6010"},
		{shared.CategoryContract, shared.DirectionOutflow}:  {Debit: "1610", Credit: "1030"},
		{shared.CategoryContract, shared.DirectionInflow}:   {Debit: "1030", Credit: "3510"},
		{shared.CategoryStatement, shared.DirectionOutflow}: {Debit: "7470", Credit: "1030"},
		{shared.CategoryStatement, shared.DirectionInflow}:  {Debit: "1030", Credit: "6280"},
		{shared.CategoryOther, shared.DirectionOutflow}:     {Debit: "7210", Credit: "1030"},
		{shared.CategoryOther, shared.DirectionInflow}:      {Debit: "1030", Credit: "6010"},
	}
}

// overrideFile is the YAML shape of the accounts override:
//
//	invoice:
//	  outflow: {debit: "3310", credit: "1030"}
type overrideFile map[string]map[string]AccountPair

// NewAccountMapper builds the mapper from the built-in chart, optionally
// overridden per category/direction from a YAML file. The resulting mapping
// is validated exhaustively at startup so a bad override fails fast rather
// than surfacing as a malformed entry later.
func NewAccountMapper(overridePath string) (*AccountMapper, error) {
	mapping := defaultMapping()

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read accounts override %s: %w", overridePath, err)
		}

		var override overrideFile
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse accounts override %s: %w", overridePath, err)
		}

		for rawCategory, directions := range override {
			category := shared.ParseCategory(rawCategory)
			for rawDirection, pair := range directions {
				direction := shared.Direction(rawDirection)
				if direction != shared.DirectionInflow && direction != shared.DirectionOutflow {
					return nil, fmt.Errorf("accounts override %s: unknown direction %q", overridePath, rawDirection)
				}
				mapping[mappingKey{category, direction}] = pair
			}
		}
	}

	mapper := &AccountMapper{mapping: mapping}
	if err := mapper.validate(); err != nil {
		return nil, err
	}
	return mapper, nil
}

// validate checks every category/direction combination resolves to a legal
// pair: both codes present and debit distinct from credit
func (m *AccountMapper) validate() error {
	for _, category := range shared.Categories {
		for _, direction := range shared.Directions {
			pair, ok := m.mapping[mappingKey{category, direction}]
			if !ok {
				return fmt.Errorf("account mapping missing for %s/%s", category, direction)
			}
			if pair.Debit == "" || pair.Credit == "" {
				return fmt.Errorf("account mapping for %s/%s has an empty account code", category, direction)
			}
			if pair.Debit == pair.Credit {
				return fmt.Errorf("account mapping for %s/%s debits and credits the same account %s", category, direction, pair.Debit)
			}
		}
	}
	return nil
}

// Resolve returns the account pair for a category and direction. The mapper
// is validated at construction, so resolution always succeeds for known
// categories; ParseCategory folds unknown input to CategoryOther upstream.
func (m *AccountMapper) Resolve(category shared.DocumentCategory, direction shared.Direction) (AccountPair, bool) {
	pair, ok := m.mapping[mappingKey{category, direction}]
	return pair, ok
}
