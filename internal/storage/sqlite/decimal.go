package sqlite

import "github.com/shopspring/decimal"

// decimalFromString parses a stored weight column. Weight is kept as TEXT
// in SQLite to preserve shopspring/decimal's exact textual representation
// instead of losing precision through SQLite's REAL affinity.
func decimalFromString(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
