package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBytesRoundTrip(t *testing.T) {
	bids := Sheet{
		Name:    "Bids",
		Columns: []Column{{Header: "Project", Width: 24}, {Header: "Bid Amount", Width: 14}, {Header: "Margin"}},
		Summary: []interface{}{"Total", 1600000.0},
	}
	bids.AddRow("Tower A", 1500000.0, "20.0%")
	bids.AddRow("Clinic", 100000.0, "4.0%")

	summary := Sheet{Name: "Summary", Columns: []Column{{Header: "Metric"}, {Header: "Value"}}}
	summary.AddRow("Win Rate", "50.0%")

	data, err := Bytes(bids, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Bids", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Bids")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Project", "Bid Amount", "Margin"}, rows[0])
	assert.Equal(t, "Tower A", rows[1][0])
	assert.Equal(t, "Total", rows[3][0])

	v, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "50.0%", v)
}

func TestEmptySheet(t *testing.T) {
	data, err := Bytes(Sheet{Name: "Empty"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCells(t *testing.T) {
	assert.Equal(t, "", Money(decimal.NullDecimal{}))
	assert.Equal(t, 1234.57, Money(decimal.NewNullDecimal(decimal.RequireFromString("1234.567"))))

	d := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-05", Date(&d))
	assert.Equal(t, "", Date(nil))

	v := 12.0
	assert.Equal(t, "12.0%", Percent(&v))
	assert.Equal(t, "N/A", Percent(nil))

	assert.Equal(t, ContentType, ContentTypeFor("a.XLSX"))
	assert.Equal(t, "text/csv", ContentTypeFor("a.csv"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a"))
}
