// Package dummy expands multi-response columns into binary indicator columns.
//
// A multi-response cell such as "Red, Blue" is split on a separator into
// trimmed tokens. Every distinct token seen in a column becomes an indicator
// column named "{column}_{token}" holding 1 where the row mentions the token
// and 0 elsewhere.
package dummy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"dummycoder/domain/dataset"
	"dummycoder/internal/errors"
)

// ConflictPolicy decides what happens when an indicator name is already taken.
type ConflictPolicy string

const (
	// ConflictFail aborts the whole call with a NAMING_CONFLICT error.
	ConflictFail ConflictPolicy = "fail"
	// ConflictSuffix appends _1, _2, ... until the name is free.
	ConflictSuffix ConflictPolicy = "suffix"
)

// ParseConflictPolicy accepts "fail" or "suffix" (case-insensitive).
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictFail:
		return ConflictFail, nil
	case ConflictSuffix:
		return ConflictSuffix, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unknown conflict policy %q (want fail or suffix)", s))
	}
}

// Universe is the sorted set of distinct tokens observed in one column.
type Universe struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
	// Indicators holds the generated column names, aligned with Values.
	Indicators []string `json:"indicators"`
}

// Result is the output of Encode
type Result struct {
	Dataset *dataset.Dataset
	// Universes holds one entry per distinct target column, in first-occurrence
	// order, so a column requested twice is reported once.
	Universes []Universe
}

type options struct {
	conflict ConflictPolicy
}

// Option customizes Encode
type Option func(*options)

// WithConflictPolicy selects how indicator name collisions are handled.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(o *options) {
		o.conflict = p
	}
}

// Encode dummy-codes the target columns of ds.
//
// The input dataset is never modified: work happens on a clone, so a failed
// or cancelled call leaves the caller's data exactly as it was. Targets are
// processed in order; a name listed more than once is encoded only the first
// time. When keepOriginals is false the targets are dropped after all
// indicators have been computed.
func Encode(ctx context.Context, ds *dataset.Dataset, targets []string, separator string, keepOriginals bool, opts ...Option) (*Result, error) {
	o := options{conflict: ConflictFail}
	for _, opt := range opts {
		opt(&o)
	}

	if ds == nil {
		return nil, errors.InvalidInput("dataset is required")
	}

	unique := make([]string, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, name := range targets {
		if !ds.Has(name) {
			return nil, errors.ColumnNotFound(name)
		}
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}

	out := ds.Clone()
	universes := make([]Universe, 0, len(unique))

	for _, name := range unique {
		if err := ctx.Err(); err != nil {
			return nil, errors.Cancelled(err)
		}

		cells, _ := out.Column(name)
		tokens := make([]map[string]struct{}, len(cells))
		texts := make([]string, len(cells))
		for i, cell := range cells {
			texts[i] = cellText(cell)
			tokens[i] = tokenSet(texts[i], separator)
		}

		values := ValueUniverse(texts, separator)
		universe := Universe{
			Column:     name,
			Values:     values,
			Indicators: make([]string, 0, len(values)),
		}

		for _, value := range values {
			indicator, err := resolveName(out, IndicatorName(name, value), o.conflict)
			if err != nil {
				return nil, err
			}

			column := make([]dataset.Cell, len(cells))
			for i := range cells {
				if _, ok := tokens[i][value]; ok {
					column[i] = 1
				} else {
					column[i] = 0
				}
			}

			if err := out.AddColumn(indicator, column); err != nil {
				return nil, errors.Wrapf(err, "failed to add indicator column %q", indicator)
			}
			universe.Indicators = append(universe.Indicators, indicator)
		}

		universes = append(universes, universe)
	}

	if !keepOriginals {
		out.DropColumns(unique...)
	}

	return &Result{Dataset: out, Universes: universes}, nil
}

// Tokenize splits a cell on sep, trims each piece and discards empty pieces.
// An empty separator yields the whole trimmed cell as a single token.
func Tokenize(cell, sep string) []string {
	if sep == "" {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var tokens []string
	for _, piece := range strings.Split(cell, sep) {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// ValueUniverse returns the sorted distinct tokens across all cells.
func ValueUniverse(cells []string, sep string) []string {
	set := make(map[string]struct{})
	for _, cell := range cells {
		for _, token := range Tokenize(cell, sep) {
			set[token] = struct{}{}
		}
	}

	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// IndicatorName builds the name of the indicator column for value in column.
func IndicatorName(column, value string) string {
	return column + "_" + value
}

func tokenSet(cell, sep string) map[string]struct{} {
	tokens := Tokenize(cell, sep)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// cellText renders a cell as text; missing cells become "".
func cellText(cell dataset.Cell) string {
	if cell == nil {
		return ""
	}
	return cast.ToString(cell)
}

func resolveName(ds *dataset.Dataset, name string, policy ConflictPolicy) (string, error) {
	if !ds.Has(name) {
		return name, nil
	}
	if policy != ConflictSuffix {
		return "", errors.NamingConflict(name)
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !ds.Has(candidate) {
			return candidate, nil
		}
	}
}
