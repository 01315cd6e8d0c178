package valueobject

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CNY Currency = "CNY"
	JPY Currency = "JPY"
	HKD Currency = "HKD"
)

// DefaultCurrency is used when a caller does not name one
const DefaultCurrency = USD

// MoneyScale is the number of decimal places every Money amount is rounded to
const MoneyScale int32 = 2

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	// amounts below one cent are treated as zero when settling balances
	minorUnit = decimal.New(1, -MoneyScale)
)

// IsValid reports whether the code has the ISO 4217 shape
func (c Currency) IsValid() bool {
	return currencyPattern.MatchString(string(c))
}

func (c Currency) String() string {
	return string(c)
}

// Money is an immutable monetary amount in a single currency.
// Amounts are always rounded half away from zero to two decimal places.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money, rounding the amount to two decimal places
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, shared.NewValidationError("invalid currency code %q", string(currency))
	}
	return Money{
		amount:   amount.Round(MoneyScale),
		currency: currency,
	}, nil
}

// NewMoneyFromString parses a decimal string such as "1234.56"
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, shared.NewValidationError("invalid amount %q", amount)
	}
	return NewMoney(d, currency)
}

// MustNewMoney is NewMoneyFromString for literals known to be valid
func MustNewMoney(amount string, currency Currency) Money {
	m, err := NewMoneyFromString(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsEffectivelyZero is true when the absolute amount is below one cent
func (m Money) IsEffectivelyZero() bool {
	return m.amount.Abs().LessThan(minorUnit)
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) checkCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return shared.NewDomainError(shared.CodeCurrencyMismatch,
			fmt.Sprintf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency))
	}
	return nil
}

// Add returns the rounded sum; both operands must share a currency
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount).Round(MoneyScale), currency: m.currency}, nil
}

// Subtract returns the rounded difference; both operands must share a currency
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.checkCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount).Round(MoneyScale), currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Multiply scales the amount by factor and rounds the product
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(MoneyScale), currency: m.currency}
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.checkCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	if err := m.checkCurrency("compare", other); err != nil {
		return false, err
	}
	return m.amount.LessThan(other.amount), nil
}

// Round returns the amount rounded half away from zero to the given places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Equals returns true if both amount and currency match
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// StringFixed returns the amount with two decimal places, e.g. "1000.00"
func (m Money) StringFixed() string {
	return m.amount.StringFixed(MoneyScale)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.StringFixed(), m.currency)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON encodes the amount as a decimal string, never a float
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.StringFixed(), Currency: m.currency})
}

// UnmarshalJSON decodes {"amount": "...", "currency": "..."} through NewMoney
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
