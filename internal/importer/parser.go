package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// TreeRow is one tree parsed from a workbook sheet. Numeric fields default
// to zero when the cell is missing or malformed; the cost engine treats
// zero as "not charged".
type TreeRow struct {
	Sequence    int
	Code        string
	Date        time.Time
	TreeName    string
	FaceWood    float64
	Height      float64
	PotWidth    float64
	PotHeight   float64
	Price       float64
	Transport   float64
	Crane       float64
	SupportWood float64
	Pack        float64
	Truck       float64
	Equipment   float64
	Labor       float64
	Other       float64
	DeadTree    float64
	TotalCost   float64
	SalePrice   float64
	GardenName  string
	Note        string
	SheetName   string
}

// Canonical column keys. The alias table maps the header variants seen in
// real nursery workbooks onto these.
const (
	colSequence    = "sequence"
	colCode        = "code"
	colDate        = "date"
	colTreeName    = "tree_name"
	colFaceWood    = "face_wood"
	colHeight      = "height"
	colPotWidth    = "pot_width"
	colPotHeight   = "pot_height"
	colPrice       = "price"
	colTransport   = "transport"
	colCrane       = "crane"
	colSupportWood = "support_wood"
	colPack        = "pack"
	colTruck       = "truck"
	colEquipment   = "equipment"
	colLabor       = "labor"
	colOther       = "other"
	colDeadTree    = "dead_tree"
	colTotalCost   = "total_cost"
	colSalePrice   = "sale_price"
	colGardenName  = "garden_name"
	colNote        = "note"
)

var headerAliases = map[string]string{
	"ลำดับที่":     colSequence,
	"ลำดับ":        colSequence,
	"no":           colSequence,
	"รหัส":         colCode,
	"code":         colCode,
	"วันลงไม้":     colDate,
	"date":         colDate,
	"ชื่อต้นไม้":   colTreeName,
	"ต้นไม้":       colTreeName,
	"tree name":    colTreeName,
	"หน้าไม้":      colFaceWood,
	"ความสูงต้น":   colHeight,
	"ความสูง":      colHeight,
	"height":       colHeight,
	"ตุ้มกว้าง":    colPotWidth,
	"ตุ้มสูง":      colPotHeight,
	"ราคา":         colPrice,
	"price":        colPrice,
	"ค่าขนส่ง":     colTransport,
	"ค่าเครน":      colCrane,
	"เครน/หน้างาน": colCrane,
	"เครน/เฮียบหน้างาน": colCrane,
	"ค่าไม้ค้ำ":         colSupportWood,
	"ค่าแพค":            colPack,
	"ค่ารถเฮียบ":        colTruck,
	"ค่ารถทอย":          colTruck,
	"ค่าอุปกรณ์":        colEquipment,
	"ค่าแรง":            colLabor,
	"อื่นๆ":             colOther,
	"ค่าอื่นๆ":          colOther,
	"เพิ่มทุนไม้ตาย":    colDeadTree,
	"ต้นทุน/ต้น":        colTotalCost,
	"ต้นทุน":            colTotalCost,
	"total cost":        colTotalCost,
	"ราคาขาย":           colSalePrice,
	"sale price":        colSalePrice,
	"ชื่อสวน":           colGardenName,
	"garden":            colGardenName,
	"หมายเหตุ":          colNote,
	"note":              colNote,
}

// ParseWorkbook reads every sheet of an xlsx workbook and returns the tree
// rows it can make sense of. A sheet without a recognizable header row is
// skipped. Rows missing a tree name, or carrying neither a price nor a
// total cost, are dropped and counted.
func ParseWorkbook(reader io.Reader) ([]TreeRow, int, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("importer: workbook has no sheets")
	}

	var trees []TreeRow
	dropped := 0
	for _, sheet := range sheets {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, 0, fmt.Errorf("importer: read sheet %q: %w", sheet, err)
		}
		headerIdx, colMap := findHeader(rows)
		if colMap == nil {
			continue
		}
		for i := headerIdx + 1; i < len(rows); i++ {
			row, ok := mapRow(rows[i], colMap, sheet)
			if !ok {
				if !isBlankRow(rows[i]) {
					dropped++
				}
				continue
			}
			trees = append(trees, row)
		}
	}
	if len(trees) == 0 {
		return nil, dropped, fmt.Errorf("importer: workbook has no usable rows")
	}
	return trees, dropped, nil
}

// findHeader locates the first row that maps at least a tree name column
// plus one cost column.
func findHeader(rows [][]string) (int, map[string]int) {
	for idx, row := range rows {
		colMap := make(map[string]int)
		for col, cell := range row {
			key, ok := headerAliases[normalizeHeader(cell)]
			if !ok {
				continue
			}
			if _, exists := colMap[key]; !exists {
				colMap[key] = col
			}
		}
		_, hasName := colMap[colTreeName]
		_, hasPrice := colMap[colPrice]
		_, hasTotal := colMap[colTotalCost]
		if hasName && (hasPrice || hasTotal) {
			return idx, colMap
		}
	}
	return 0, nil
}

func mapRow(cells []string, colMap map[string]int, sheet string) (TreeRow, bool) {
	row := TreeRow{SheetName: sheet}
	row.TreeName = readString(cells, colMap, colTreeName)
	if row.TreeName == "" {
		return row, false
	}

	row.Sequence = int(readNumber(cells, colMap, colSequence))
	row.Code = readString(cells, colMap, colCode)
	row.Date = parseThaiDate(readString(cells, colMap, colDate))
	row.FaceWood = readNumber(cells, colMap, colFaceWood)
	row.Height = readNumber(cells, colMap, colHeight)
	row.PotWidth = readNumber(cells, colMap, colPotWidth)
	row.PotHeight = readNumber(cells, colMap, colPotHeight)
	row.Price = readNumber(cells, colMap, colPrice)
	row.Transport = readNumber(cells, colMap, colTransport)
	row.Crane = readNumber(cells, colMap, colCrane)
	row.SupportWood = readNumber(cells, colMap, colSupportWood)
	row.Pack = readNumber(cells, colMap, colPack)
	row.Truck = readNumber(cells, colMap, colTruck)
	row.Equipment = readNumber(cells, colMap, colEquipment)
	row.Labor = readNumber(cells, colMap, colLabor)
	row.Other = readNumber(cells, colMap, colOther)
	row.DeadTree = readNumber(cells, colMap, colDeadTree)
	row.TotalCost = readNumber(cells, colMap, colTotalCost)
	row.SalePrice = readNumber(cells, colMap, colSalePrice)
	row.Note = readString(cells, colMap, colNote)

	row.GardenName = readString(cells, colMap, colGardenName)
	if row.GardenName == "" {
		row.GardenName = strings.TrimSpace(sheet)
	}

	if row.Price <= 0 && row.TotalCost <= 0 {
		return row, false
	}
	return row, true
}

// normalizeHeader folds a header cell into the alias-map key form. Thai
// text pasted from other tools sometimes arrives with decomposed vowel
// marks, so the cell is NFC-normalized before lookup.
func normalizeHeader(raw string) string {
	value := norm.NFC.String(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	return strings.Join(strings.Fields(value), " ")
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func readCell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func readString(cells []string, colMap map[string]int, key string) string {
	idx, ok := colMap[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(readCell(cells, idx))
}

// readNumber tolerates thousand separators, currency suffixes and stray
// text. Anything unparseable comes back as zero.
func readNumber(cells []string, colMap map[string]int, key string) float64 {
	idx, ok := colMap[key]
	if !ok {
		return 0
	}
	raw := strings.TrimSpace(readCell(cells, idx))
	if raw == "" {
		return 0
	}
	var cleaned strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			cleaned.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0
	}
	return value
}

var dateLayouts = []string{"2006-01-02", "2/1/2006", "02/01/2006", "2-1-2006", "2 Jan 2006"}

// parseThaiDate parses a workbook date. Buddhist-era years are converted
// to the common era (2568 becomes 2025).
func parseThaiDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if ts.Year() > 2400 {
			ts = ts.AddDate(-543, 0, 0)
		}
		return ts
	}
	return time.Time{}
}
