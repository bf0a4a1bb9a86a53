package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rferrors "github.com/riskfold/riskfold/pkg/errors"
)

const sampleCSV = `id,loan_amount,interest_rate,annual_income,debt_to_income_ratio,credit_score,employment_status,grade_subgrade,loan_paid_back
1,1000,10,12000,0.3,700,employed,A1,1
2,2000,5,24000,0.1,750,self-employed,B2,1
3,500,20,6000,0.5,600,unemployed,C3,0
4,800,15,9600,0.4,650,employed,A2,1
`

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV("train", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, tbl.NumRows())
	require.NoError(t, tbl.RequireColumns(ApplicantColumns...))
	require.NoError(t, tbl.RequireColumns(ColLabel, ColID))

	amounts, err := tbl.Column(ColLoanAmount)
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 2000, 500, 800}, amounts)

	status, err := tbl.StringColumn(ColEmploymentStatus)
	require.NoError(t, err)
	assert.Equal(t, []string{"employed", "self-employed", "unemployed", "employed"}, status)
}

func TestRequireColumnsFailsFast(t *testing.T) {
	tbl, err := ReadCSV("test", strings.NewReader("id,loan_amount\n1,100\n"))
	require.NoError(t, err)

	err = tbl.RequireColumns(ColLoanAmount, ColCreditScore)
	require.Error(t, err)

	var se *rferrors.SchemaError
	require.True(t, rferrors.As(err, &se))
	assert.Equal(t, ColCreditScore, se.Column)
	assert.Equal(t, "test", se.Table)
}

func TestMatrixAndVector(t *testing.T) {
	tbl, err := ReadCSV("train", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	m, err := tbl.Matrix(ColLoanAmount, ColInterestRate)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 20.0, m.At(2, 1))

	y, err := tbl.Vector(ColLabel)
	require.NoError(t, err)
	assert.Equal(t, 0.0, y.AtVec(2))
}

func TestAddColumnDimensionCheck(t *testing.T) {
	tbl := NewTable("t", 3)
	err := tbl.AddColumn("x", []float64{1, 2})
	require.Error(t, err)

	var de *rferrors.DimensionError
	assert.True(t, rferrors.As(err, &de))
}

func TestSelectRows(t *testing.T) {
	tbl, err := ReadCSV("train", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	sub, err := tbl.SelectRows([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NumRows())

	amounts, err := sub.Column(ColLoanAmount)
	require.NoError(t, err)
	assert.Equal(t, []float64{500, 1000}, amounts)

	grades, err := sub.StringColumn(ColGradeSubgrade)
	require.NoError(t, err)
	assert.Equal(t, []string{"C3", "A1"}, grades)

	_, err = tbl.SelectRows([]int{99})
	assert.Error(t, err)
}
