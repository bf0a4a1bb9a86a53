package dataset

// Column names of the loan application schema. The label column is present
// only in training tables.
const (
	ColID               = "id"
	ColLoanAmount       = "loan_amount"
	ColInterestRate     = "interest_rate"
	ColAnnualIncome     = "annual_income"
	ColDebtToIncome     = "debt_to_income_ratio"
	ColCreditScore      = "credit_score"
	ColEmploymentStatus = "employment_status"
	ColGradeSubgrade    = "grade_subgrade"
	ColLabel            = "loan_paid_back"

	// ColLoanTerm is absent from the competition tables and filled in by
	// the term imputer before any ratio feature is computed.
	ColLoanTerm = "loan_term"
)

// ApplicantColumns are the raw numeric columns every input table must carry.
var ApplicantColumns = []string{
	ColLoanAmount,
	ColInterestRate,
	ColAnnualIncome,
	ColDebtToIncome,
	ColCreditScore,
}

// CategoricalColumns are the high-cardinality string columns that receive
// target encoding (or native categorical splits).
var CategoricalColumns = []string{
	ColEmploymentStatus,
	ColGradeSubgrade,
}
