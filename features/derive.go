// Package features computes the derived financial columns of the loan
// table. Every transform here is a pure function of the raw and imputed
// attributes and never reads the label, so it is applied identically to
// training and inference rows.
package features

import (
	"github.com/riskfold/riskfold/dataset"
	"github.com/riskfold/riskfold/pkg/errors"
)

// Derived column names appended by Derive.
const (
	ColMonthlyPayment     = "monthly_payment"
	ColAvailableIncome    = "available_income"
	ColPaymentToIncome    = "payment_to_income"
	ColCompositeRiskScore = "composite_risk_score"
	ColAmortizedPayment   = "amortized_payment"
)

// Risk score weights. Debt-to-income is weighted highest as the leading
// distress indicator, then normalized credit-score distance, then rate.
const (
	riskWeightDTI    = 0.40
	riskWeightCredit = 0.35
	riskWeightRate   = 0.25
)

// DerivedColumns lists the feature columns Derive appends, in order.
var DerivedColumns = []string{
	ColMonthlyPayment,
	ColAvailableIncome,
	ColPaymentToIncome,
	ColCompositeRiskScore,
	ColAmortizedPayment,
}

// MonthlyPayment is the simple monthly interest charge: the annual
// percentage rate applied to the principal, divided by 12 months x 100.
func MonthlyPayment(loanAmount, annualRatePct float64) float64 {
	return loanAmount * annualRatePct / 1200
}

// AvailableIncome is the income remaining after existing debt service.
func AvailableIncome(annualIncome, dti float64) float64 {
	return annualIncome * (1 - dti)
}

// PaymentToIncome relates the monthly payment to monthly income. The +1 in
// the denominator keeps zero-income rows finite; it is a deliberate
// stability guard, not an approximation to remove.
func PaymentToIncome(monthlyPayment, annualIncome float64) float64 {
	return monthlyPayment / (annualIncome/12 + 1)
}

// CompositeRiskScore blends debt-to-income, normalized credit-score distance
// from the 850 ceiling and the interest rate into one bounded score.
func CompositeRiskScore(dti, creditScore, annualRatePct float64) float64 {
	return riskWeightDTI*dti +
		riskWeightCredit*(850-creditScore)/850 +
		riskWeightRate*annualRatePct/100
}

// Derive appends the derived feature columns to the table in place. The
// loan_term column must already be present (imputed when absent from the
// source data); the amortized payment falls back to straight principal
// division at zero interest.
func Derive(t *dataset.Table) error {
	required := append([]string{}, dataset.ApplicantColumns...)
	required = append(required, dataset.ColLoanTerm)
	if err := t.RequireColumns(required...); err != nil {
		return errors.Wrap(err, "deriving features")
	}

	amount, _ := t.Column(dataset.ColLoanAmount)
	rate, _ := t.Column(dataset.ColInterestRate)
	income, _ := t.Column(dataset.ColAnnualIncome)
	dti, _ := t.Column(dataset.ColDebtToIncome)
	credit, _ := t.Column(dataset.ColCreditScore)
	term, _ := t.Column(dataset.ColLoanTerm)

	n := t.NumRows()
	monthly := make([]float64, n)
	available := make([]float64, n)
	payToInc := make([]float64, n)
	risk := make([]float64, n)
	amortized := make([]float64, n)

	for i := 0; i < n; i++ {
		monthly[i] = MonthlyPayment(amount[i], rate[i])
		available[i] = AvailableIncome(income[i], dti[i])
		payToInc[i] = PaymentToIncome(monthly[i], income[i])
		risk[i] = CompositeRiskScore(dti[i], credit[i], rate[i])
		amortized[i] = AmortizedPayment(amount[i], rate[i], term[i])
	}

	for _, col := range []struct {
		name string
		vals []float64
	}{
		{ColMonthlyPayment, monthly},
		{ColAvailableIncome, available},
		{ColPaymentToIncome, payToInc},
		{ColCompositeRiskScore, risk},
		{ColAmortizedPayment, amortized},
	} {
		if err := t.AddColumn(col.name, col.vals); err != nil {
			return err
		}
	}
	return nil
}
