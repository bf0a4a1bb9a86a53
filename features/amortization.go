package features

import "math"

// AmortizedPayment computes the fixed monthly annuity payment that repays
// the principal with interest over termMonths:
//
//	P * r(1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate fraction. At zero interest the schedule degrades
// to straight principal division, and a non-positive term falls back to the
// simple monthly interest charge so the feature never divides by zero.
func AmortizedPayment(loanAmount, annualRatePct, termMonths float64) float64 {
	if termMonths <= 0 {
		return MonthlyPayment(loanAmount, annualRatePct)
	}
	r := annualRatePct / 1200
	if r == 0 {
		return loanAmount / termMonths
	}
	pow := math.Pow(1+r, termMonths)
	return loanAmount * r * pow / (pow - 1)
}
