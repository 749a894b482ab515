package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/selintasman/todo-list/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []model.Task {
	due := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: "1", Text: "milk", Priority: model.PriorityHigh, FinishDate: &due},
		{ID: "2", Text: "bread", IsDone: true},
	}
}

func TestExportCSV(t *testing.T) {
	data, err := Export(sampleTasks(), "csv")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "milk", "High", "2030-03-04", "false"}, records[1])
	assert.Equal(t, []string{"2", "bread", "", "", "true"}, records[2])
}

func TestExportJSON(t *testing.T) {
	data, err := Export(sampleTasks(), "JSON")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priority": "High"`)
	assert.Contains(t, string(data), `"text": "bread"`)
}

func TestExportPDF(t *testing.T) {
	data, err := Export(sampleTasks(), "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(sampleTasks(), "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "application/octet-stream", ContentType("xml"))
	assert.Equal(t, "text/csv", ContentType("csv"))
}
