package model

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Amount is a token amount in the smallest token unit, backed by an
// arbitrary-precision integer. All balance arithmetic goes through Amount so
// no floating point ever touches the ledger. It persists as numeric(78,0),
// wide enough for a full uint256.
type Amount struct {
	i big.Int
}

func NewAmount(v int64) Amount {
	var a Amount
	a.i.SetInt64(v)
	return a
}

// ParseAmount parses a base-10 integer string.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	s = strings.TrimSpace(s)
	if s == "" {
		return a, nil
	}
	if _, ok := a.i.SetString(s, 10); !ok {
		return Amount{}, fmt.Errorf("invalid token amount %q", s)
	}
	return a, nil
}

func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.i.Add(&a.i, &b.i)
	return r
}

func (a Amount) Sub(b Amount) Amount {
	var r Amount
	r.i.Sub(&a.i, &b.i)
	return r
}

// Cmp returns -1, 0 or 1 like big.Int.Cmp.
func (a Amount) Cmp(b Amount) int { return a.i.Cmp(&b.i) }

func (a Amount) Sign() int { return a.i.Sign() }

func (a Amount) IsZero() bool { return a.i.Sign() == 0 }

func (a Amount) String() string { return a.i.String() }

// BigInt returns a copy; mutating it never touches the Amount.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(&a.i) }

func (a Amount) MarshalJSON() ([]byte, error) {
	// Balances serialize as strings so JS clients never lose precision.
	return []byte(`"` + a.i.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		a.i.SetInt64(0)
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.i.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		a.i.SetInt64(0)
		return nil
	case int64:
		a.i.SetInt64(v)
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

// GormDataType tells the migrator which column type to use.
func (Amount) GormDataType() string { return "numeric(78,0)" }
