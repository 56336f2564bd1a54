package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatSections() []Section {
	headers := []string{"Seat", "Roll Number", "Course"}
	return []Section{
		{Title: "Room A", Data: Dataset{Headers: headers, Rows: []map[string]string{
			{"Seat": "1", "Roll Number": "BCA001", "Course": "BCA"},
			{"Seat": "2", "Roll Number": "MCA001", "Course": "MCA"},
		}}},
		{Title: "Room B", Data: Dataset{Headers: headers, Rows: []map[string]string{
			{"Seat": "1", "Roll Number": "BCA002", "Course": "BCA"},
		}}},
	}
}

func TestCSVExporterFlattensSections(t *testing.T) {
	out, err := NewCSVExporter().Render(seatSections()...)
	require.NoError(t, err)

	assert.Equal(t, "Seat,Roll Number,Course\n1,BCA001,BCA\n2,MCA001,MCA\n1,BCA002,BCA\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render()
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	out, err := NewPDFExporter().Render("Seat chart", seatSections()...)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsEmptySection(t *testing.T) {
	_, err := NewPDFExporter().Render("Seat chart", Section{Title: "empty"})
	assert.Error(t, err)
}
