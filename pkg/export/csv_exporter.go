package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Section is a titled dataset, rendered as one block of a seat chart.
type Section struct {
	Title string
	Data  Dataset
}

// CSVExporter renders sections into a single CSV document.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes one header row followed by the rows of every section. All
// sections must share the first section's headers.
func (e *CSVExporter) Render(sections ...Section) ([]byte, error) {
	if len(sections) == 0 || len(sections[0].Data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	headers := sections[0].Data.Headers
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, section := range sections {
		for _, row := range section.Data.Rows {
			record := make([]string, len(headers))
			for i, header := range headers {
				record[i] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
