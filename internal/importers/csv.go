package importers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/library/internal/services"
)

// FirstDataRow is the 1-based line number of the first record after the header.
const FirstDataRow = 2

// ParseCatalogCSV reads a catalog CSV with a header row. Columns are matched by
// name (case-insensitive) so exports with an id column, or files with the
// columns in another order, are accepted. Title and author columns are required.
func ParseCatalogCSV(r io.Reader) ([]services.BookInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "author"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header is missing the %q column", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var inputs []services.BookInput
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", FirstDataRow+len(inputs), err)
		}
		inputs = append(inputs, services.BookInput{
			Title:  field(record, "title"),
			Author: field(record, "author"),
			Genre:  field(record, "genre"),
			Year:   field(record, "year"),
		})
	}

	return inputs, nil
}
