package valueobjects

import "fmt"

type Money struct {
	amountInCents int64
	currency      string
}

func NewMoney(amountInCents int64, currency string) Money {
	if currency == "" {
		currency = "usd"
	}
	return Money{
		amountInCents: amountInCents,
		currency:      currency,
	}
}

func (m Money) AmountInCents() int64 {
	return m.amountInCents
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsPositive() bool {
	return m.amountInCents > 0
}

// Split divides m into a platform fee of feePercent (rounded down to the
// cent) and the remainder.
func (m Money) Split(feePercent int) (fee Money, remainder Money) {
	feeCents := m.amountInCents * int64(feePercent) / 100
	return NewMoney(feeCents, m.currency), NewMoney(m.amountInCents-feeCents, m.currency)
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.amountInCents/100, m.amountInCents%100, m.currency)
}
