package dataset

import (
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/riskfold/riskfold/pkg/errors"
	"github.com/riskfold/riskfold/pkg/log"
)

// ReadCSV parses a headered CSV stream into a Table. Column types follow
// gota's detection: int and float series become numeric columns, everything
// else is kept as a categorical string column.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	)
	if df.Error() != nil {
		return nil, errors.Wrapf(df.Error(), "reading CSV table %q", name)
	}
	return fromDataFrame(name, df)
}

// ReadCSVFile parses a CSV file into a Table.
func ReadCSVFile(name, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening CSV table %q", name)
	}
	defer f.Close()
	return ReadCSV(name, f)
}

func fromDataFrame(name string, df dataframe.DataFrame) (*Table, error) {
	t := NewTable(name, df.Nrow())
	types := df.Types()
	for i, col := range df.Names() {
		s := df.Col(col)
		switch types[i] {
		case series.Int, series.Float:
			if err := t.AddColumn(col, s.Float()); err != nil {
				return nil, err
			}
		default:
			if err := t.AddStringColumn(col, s.Records()); err != nil {
				return nil, err
			}
		}
	}
	log.GetLoggerWithName("dataset").Debug("loaded table",
		"table", name, "rows", t.NumRows(), "columns", len(t.Columns()))
	return t, nil
}
