package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestParseWorkbook(t *testing.T) {
	reader := buildWorkbook(t, map[string][][]any{
		"สวนพี่ทิต": {
			{"ลำดับที่", "รหัส", "วันลงไม้", "ชื่อต้นไม้", "หน้าไม้", "ความสูงต้น", "ตุ้มกว้าง", "ตุ้มสูง",
				"ราคา", "ค่าขนส่ง", "ค่าเครน", "ค่าแรง", "ต้นทุน/ต้น", "ราคาขาย", "หมายเหตุ"},
			{1, "TT68-001", "2568-01-15", "ตะแบก", 12, 4.5, 1.2, 0.8,
				"30,000", 2500, 1500, 800, "34,800", 45000, "ไม้สวย"},
			{2, "TT68-002", "2568-01-15", "มะขาม", 10, 3.8, 1.0, 0.7,
				20000, 2000, 0, 500, 22500, 0, ""},
			{"", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
			{3, "TT68-003", "", "", 0, 0, 0, 0, 5000, 0, 0, 0, 5000, 0, "no name"},
		},
	})

	rows, dropped, err := ParseWorkbook(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1, dropped)

	first := rows[0]
	require.Equal(t, "ตะแบก", first.TreeName)
	require.Equal(t, "TT68-001", first.Code)
	require.Equal(t, 30000.0, first.Price)
	require.Equal(t, 34800.0, first.TotalCost)
	require.Equal(t, 45000.0, first.SalePrice)
	require.Equal(t, 12.0, first.FaceWood)
	require.Equal(t, 4.5, first.Height)
	require.Equal(t, "สวนพี่ทิต", first.GardenName)

	// Buddhist year 2568 converts to 2025.
	require.Equal(t, 2025, first.Date.Year())
	require.Equal(t, 1, int(first.Date.Month()))
	require.Equal(t, 15, first.Date.Day())
}

func TestParseWorkbookGardenColumnWins(t *testing.T) {
	reader := buildWorkbook(t, map[string][][]any{
		"Sheet A": {
			{"ชื่อต้นไม้", "ราคา", "ชื่อสวน"},
			{"ยางนา", 1200, "สวนลุงมี"},
			{"พะยูง", 8000, ""},
		},
	})

	rows, _, err := ParseWorkbook(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "สวนลุงมี", rows[0].GardenName)
	require.Equal(t, "Sheet A", rows[1].GardenName)
}

func TestParseWorkbookHeaderNotOnFirstRow(t *testing.T) {
	reader := buildWorkbook(t, map[string][][]any{
		"ไม้ล้อมปี68": {
			{"บัญชีไม้ล้อม ปี 2568"},
			{},
			{"ชื่อต้นไม้", "ต้นทุน/ต้น"},
			{"ตะแบก", 7000},
		},
	})

	rows, _, err := ParseWorkbook(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 7000.0, rows[0].TotalCost)
}

func TestParseWorkbookNoUsableRows(t *testing.T) {
	reader := buildWorkbook(t, map[string][][]any{
		"บัญชี": {
			{"วันที่", "รายการ", "ยอดรับเข้า"},
			{"2568-01-01", "ขายไม้", 5000},
		},
	})

	_, _, err := ParseWorkbook(reader)
	require.Error(t, err)
}

func TestNormalizeHeaderStripsBOMAndCase(t *testing.T) {
	cases := map[string]string{
		"\uFEFFชื่อต้นไม้": "ชื่อต้นไม้",
		"  Tree  Name ":    "tree name",
		"ราคา":             "ราคา",
	}
	for raw, want := range cases {
		require.Equal(t, want, normalizeHeader(raw))
	}
}

func TestParseThaiDateLayouts(t *testing.T) {
	cases := map[string]string{
		"2568-02-10": "2025-02-10",
		"2025-02-10": "2025-02-10",
		"10/02/2568": "2025-02-10",
		"":           "0001-01-01",
		"not a date": "0001-01-01",
	}
	for raw, want := range cases {
		got := parseThaiDate(raw)
		require.Equal(t, want, got.Format("2006-01-02"), raw)
	}
}
