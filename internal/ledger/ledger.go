package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ============================================
// Fee Calculator
// ============================================

var ErrInvalidAmount = errors.New("amount must be a positive integer")

// Schedule holds the platform's fee and tax rates as percentages.
// Rates are decimals so the floor points below stay exact for any
// configured rate, not just whole percentages.
type Schedule struct {
	FeeRatePct decimal.Decimal
	TaxRatePct decimal.Decimal
}

// Fees is the breakdown of a single escrow charge. All amounts are in
// the smallest currency unit (whole yen).
type Fees struct {
	GrossAmount int64
	PlatformFee int64
	Tax         int64
	Total       int64
	NetPayout   int64
}

// NewSchedule builds a schedule from percentage rates, e.g. NewSchedule("10", "10").
func NewSchedule(feeRatePct, taxRatePct string) (Schedule, error) {
	fee, err := decimal.NewFromString(feeRatePct)
	if err != nil {
		return Schedule{}, err
	}
	tax, err := decimal.NewFromString(taxRatePct)
	if err != nil {
		return Schedule{}, err
	}
	hundred := decimal.NewFromInt(100)
	if fee.IsNegative() || tax.IsNegative() || fee.GreaterThan(hundred) || tax.GreaterThan(hundred) {
		return Schedule{}, errors.New("rates must be between 0 and 100")
	}
	return Schedule{FeeRatePct: fee, TaxRatePct: tax}, nil
}

// ComputeFees calculates the platform fee, tax and total charge for a
// gross amount.
//
// Rounding: floor is applied exactly twice, once on the platform fee
// and once on the tax. floor(a+b) != floor(a)+floor(b) in general, so
// flooring anywhere else would break bit-compatibility with the fixtures.
//
//	platformFee = floor(gross * feeRate / 100)
//	tax         = floor((gross + platformFee) * taxRate / 100)
//	total       = gross + platformFee + tax
//	netPayout   = gross - platformFee
//
// The platform fee is taken once, from the creator payout. The client
// is still charged total; the fee line on the client side is the same
// fee, not a second one.
func ComputeFees(grossAmount int64, schedule Schedule) (Fees, error) {
	if grossAmount <= 0 {
		return Fees{}, ErrInvalidAmount
	}

	hundred := decimal.NewFromInt(100)
	gross := decimal.NewFromInt(grossAmount)

	platformFee := gross.Mul(schedule.FeeRatePct).Div(hundred).Floor().IntPart()
	tax := decimal.NewFromInt(grossAmount + platformFee).Mul(schedule.TaxRatePct).Div(hundred).Floor().IntPart()

	return Fees{
		GrossAmount: grossAmount,
		PlatformFee: platformFee,
		Tax:         tax,
		Total:       grossAmount + platformFee + tax,
		NetPayout:   grossAmount - platformFee,
	}, nil
}
