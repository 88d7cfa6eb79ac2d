package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// toNumeric converts an exact decimal into the pgx NUMERIC representation.
func toNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("encode numeric %s: %w", d, err)
	}
	return n, nil
}

// fromNumericText parses a NUMERIC column selected as ::text.
func fromNumericText(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode numeric %q: %w", s, err)
	}
	return d, nil
}
