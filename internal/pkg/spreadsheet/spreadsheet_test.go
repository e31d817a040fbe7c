package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRender(t *testing.T) {
	content, err := Render(Table{
		Sheet:   "2024-W10",
		Columns: []Column{{Header: "Employee", Width: 24}, {Header: "Net Pay"}},
		Rows: [][]interface{}{
			{"Ana Driver", 350.0},
			{"Bo Hauler", 120.5},
		},
		Totals: []interface{}{"Total", 470.5},
	})
	require.NoError(t, err)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"2024-W10"}, f.GetSheetList())

	rows, err := f.GetRows("2024-W10")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Employee", "Net Pay"}, rows[0])
	assert.Equal(t, "Ana Driver", rows[1][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "470.5", rows[3][1])
}

func TestRender_NoTables(t *testing.T) {
	_, err := Render()
	assert.Error(t, err)
}
