package membership

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MatchPolicy selects how redeemed codes are compared with the table keys.
type MatchPolicy string

const (
	// MatchExact compares codes byte for byte ("Adelynn14" only matches "Adelynn14").
	MatchExact MatchPolicy = "exact"
	// MatchUpper upper-cases both the table keys and the input before comparing.
	MatchUpper MatchPolicy = "upper"
)

// AccessCode defines the trial terms granted by a code.
type AccessCode struct {
	Code            string          `json:"code"`
	Plan            Plan            `json:"plan"`
	TrialDays       int             `json:"trial_days"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Description     string          `json:"description,omitempty"`
}

func (c AccessCode) validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.Wrap(ErrInvalidInput, "empty access code")
	}
	if !c.Plan.Valid() {
		return errors.Wrapf(ErrInvalidInput, "access code %q: unknown plan %q", c.Code, c.Plan)
	}
	if c.TrialDays < 0 {
		return errors.Wrapf(ErrInvalidInput, "access code %q: negative trial days", c.Code)
	}
	if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(hundred) {
		return errors.Wrapf(ErrInvalidInput, "access code %q: discount must be within 0-100", c.Code)
	}
	return nil
}

// CodeTable is the immutable table of known access codes.
type CodeTable struct {
	policy MatchPolicy
	codes  map[string]AccessCode
}

func NewCodeTable(policy MatchPolicy, codes ...AccessCode) (*CodeTable, error) {
	if policy == "" {
		policy = MatchExact
	}
	if policy != MatchExact && policy != MatchUpper {
		return nil, errors.Wrapf(ErrInvalidInput, "unknown match policy %q", policy)
	}

	t := &CodeTable{policy: policy, codes: make(map[string]AccessCode, len(codes))}
	for _, c := range codes {
		if err := c.validate(); err != nil {
			return nil, err
		}
		key := t.key(c.Code)
		if _, ok := t.codes[key]; ok {
			return nil, errors.Wrapf(ErrInvalidInput, "duplicate access code %q", c.Code)
		}
		t.codes[key] = c
	}
	return t, nil
}

func (t *CodeTable) key(code string) string {
	if t.policy == MatchUpper {
		return strings.ToUpper(code)
	}
	return code
}

func (t *CodeTable) Policy() MatchPolicy { return t.policy }

// Resolve looks up `code` in the table.
func (t *CodeTable) Resolve(code string) (AccessCode, error) {
	if c, ok := t.codes[t.key(code)]; ok {
		return c, nil
	}
	return AccessCode{}, ErrCodeNotFound
}

// All returns the codes sorted by code.
func (t *CodeTable) All() []AccessCode {
	all := make([]AccessCode, 0, len(t.codes))
	for _, c := range t.codes {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return all
}
