package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ParseCSV reads all CSV records, skipping the given number of header rows.
// Rows with uneven field counts are tolerated.
func ParseCSV(r io.Reader, skipRows int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: read csv")
		}
		if i < skipRows {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}
