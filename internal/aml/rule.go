// Package aml evaluates transactions against the monitoring rule set and
// stores the resulting records.
package aml

import (
	"fmt"

	"estateguard/pkg/errors"

	"github.com/shopspring/decimal"
)

// Rule holds the thresholds a transaction is checked against. Thresholds are
// fixed at construction; changing configuration never rewrites past verdicts.
type Rule struct {
	amountThreshold    decimal.Decimal
	frequencyThreshold int
}

// NewRule builds a rule from the configured thresholds.
func NewRule(amountThreshold int64, frequencyThreshold int) *Rule {
	return &Rule{
		amountThreshold:    decimal.NewFromInt(amountThreshold),
		frequencyThreshold: frequencyThreshold,
	}
}

// Verdict is the outcome of evaluating one transaction.
type Verdict struct {
	Suspicious bool
	Reason     string
}

// Evaluate applies the rule to a transaction amount and the count of the
// user's transactions in the current window. The amount check wins when both
// trip: a large amount is reported as such even if the frequency is also
// unusual. Both checks are strictly-greater-than comparisons.
func (r *Rule) Evaluate(amount decimal.Decimal, frequency int) (Verdict, error) {
	if amount.IsNegative() {
		return Verdict{}, errors.Wrap(errors.ErrInvalidInput, "amount must not be negative")
	}
	if frequency < 0 {
		return Verdict{}, errors.Wrap(errors.ErrInvalidInput, "frequency must not be negative")
	}

	if amount.GreaterThan(r.amountThreshold) {
		return Verdict{
			Suspicious: true,
			Reason:     fmt.Sprintf("Amount exceeds threshold of %s", r.amountThreshold.String()),
		}, nil
	}

	if frequency > r.frequencyThreshold {
		return Verdict{
			Suspicious: true,
			Reason:     fmt.Sprintf("Unusual transaction frequency: %d", frequency),
		}, nil
	}

	return Verdict{}, nil
}
