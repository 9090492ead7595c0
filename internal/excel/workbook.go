// Package excel renders ledger aggregates into a multi-sheet xlsx
// report: one configuration sheet holding the unit price, one data
// sheet per employee, a grand summary sheet and a pivot sheet.
//
// In the formula-linked strategy every money cell is a live formula
// referencing the single price cell on the configuration sheet, so
// editing that one cell inside Excel recomputes the whole workbook.
package excel

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"soyte/internal/core"
)

// ReportCode is stamped into every sheet's print header.
const ReportCode = "HC-TE-001"

const (
	configSheetTitle  = "Cấu hình"
	summarySheetTitle = "Tổng chung"
	pivotSheetTitle   = "Pivot nhanh"
	dataSheetTitle    = "BÁO CÁO SỔ Y TẾ KHÁM TRẺ EM"

	moneyNumFmt = `#,##0" ₫"`
	priceNumFmt = "0.0"
)

// Strategy selects how money cells are written.
type Strategy string

const (
	// FormulaLinked writes money cells as formulas referencing the
	// configuration sheet's price cell.
	FormulaLinked Strategy = "formula"
	// StaticValues bakes the computed numbers in; the exported file has
	// no live price dependency.
	StaticValues Strategy = "static"
)

// Aggregates is the projector input: the all-employee summary plus one
// summary table per employee that has entries.
type Aggregates struct {
	GrandTotal  []core.SummaryRow
	PerEmployee map[string][]core.SummaryRow
}

type Projector struct {
	Strategy Strategy
	Price    float64
	Owner    string // printed in the page footer, may be empty
}

// Filename names the exported workbook for a reporting month.
func Filename(month core.Month) string {
	return fmt.Sprintf("so_y_te_%s_cong_thuc_pivot_config.xlsx", month.Key())
}

// Build renders the full workbook. Any cell-level error aborts the
// build; no partially written file is returned.
func (p Projector) Build(month core.Month, agg Aggregates) (*excelize.File, error) {
	b := &builder{
		f:      excelize.NewFile(),
		names:  newSheetNamer(),
		month:  month,
		days:   month.DaysInMonth(),
		price:  p.Price,
		static: p.Strategy == StaticValues,
		owner:  p.Owner,
	}
	if err := b.makeStyles(); err != nil {
		return nil, fmt.Errorf("workbook styles: %w", err)
	}

	b.configSheet()

	employees := make([]string, 0, len(agg.PerEmployee))
	for name := range agg.PerEmployee {
		employees = append(employees, name)
	}
	sort.Strings(employees)

	empRanges := make([]sheetRange, 0, len(employees))
	for _, emp := range employees {
		subtitle := fmt.Sprintf("Tháng: %s   |   Nhân viên: %s", month.Key(), emp)
		rng := b.dataSheet(emp, subtitle, agg.PerEmployee[emp])
		rng.label = emp
		empRanges = append(empRanges, rng)
	}

	grandSubtitle := fmt.Sprintf("Tháng: %s   |   Tổng hợp tất cả nhân viên", month.Key())
	grandRange := b.dataSheet(summarySheetTitle, grandSubtitle, agg.GrandTotal)

	b.pivotSheet(agg, grandRange, empRanges)

	if b.err != nil {
		return nil, fmt.Errorf("build workbook: %w", b.err)
	}
	return b.f, nil
}

// sheetRange records where a data sheet's rows landed so the pivot
// sheet can reference them. endRow < startRow means the sheet is empty.
type sheetRange struct {
	name      string
	label     string
	schoolCol string
	sumCol    string
	moneyCol  string
	startRow  int
	endRow    int
}

func (r sheetRange) hasRows() bool { return r.endRow >= r.startRow }

type builder struct {
	f      *excelize.File
	names  *sheetNamer
	month  core.Month
	days   int
	price  float64
	static bool
	owner  string

	priceRef string // absolute reference to the config price cell

	titleStyle  int
	headerStyle int
	boldStyle   int
	moneyStyle  int
	priceStyle  int
	noticeStyle int
	totalStyle  int
	totalMoney  int

	err error
}

func (b *builder) makeStyles() error {
	var err error
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	moneyFmt := moneyNumFmt
	priceFmt := priceNumFmt

	if b.titleStyle, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"0B7AD1"}},
		Alignment: center,
	}); err != nil {
		return err
	}
	if b.headerStyle, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: center,
	}); err != nil {
		return err
	}
	if b.boldStyle, err = b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return err
	}
	if b.moneyStyle, err = b.f.NewStyle(&excelize.Style{
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return err
	}
	if b.priceStyle, err = b.f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &priceFmt,
	}); err != nil {
		return err
	}
	if b.noticeStyle, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "007BFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7F3FF"}},
		Alignment: center,
	}); err != nil {
		return err
	}
	if b.totalStyle, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		Alignment: center,
	}); err != nil {
		return err
	}
	b.totalMoney, err = b.f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		CustomNumFmt: &moneyFmt,
	})
	return err
}

// configSheet writes the price configuration sheet into the workbook's
// default sheet and records the absolute price cell reference.
func (b *builder) configSheet() {
	name := b.names.Name(configSheetTitle)
	b.check(b.f.SetSheetName(b.f.GetSheetName(0), name))
	b.priceRef = "'" + name + "'!$B$2"

	b.set(name, "A1", "CẤU HÌNH BÁO CÁO")
	b.merge(name, "A1", "C1")
	b.style(name, "A1", "C1", b.titleStyle)

	b.set(name, "A2", "Giá/sổ (nghìn VND):")
	b.set(name, "B2", b.price)
	b.style(name, "B2", "B2", b.priceStyle)
	b.set(name, "C2", "Sửa ô B2 để đổi giá cho toàn bộ workbook")

	b.set(name, "A3", "Tháng báo cáo:")
	b.set(name, "B3", b.month.Key())

	b.check(b.f.SetColWidth(name, "A", "A", 28))
	b.check(b.f.SetColWidth(name, "B", "B", 20))
	b.check(b.f.SetColWidth(name, "C", "C", 40))
	b.pageHeader(name, "CẤU HÌNH BÁO CÁO")
}

// dataSheet writes one summary table. Layout: title, subtitle, linked
// price row, notice, spacer, header, data rows, trailing totals row.
func (b *builder) dataSheet(baseName, subtitle string, rows []core.SummaryRow) sheetRange {
	name := b.names.Name(baseName)
	if _, err := b.f.NewSheet(name); err != nil {
		b.check(err)
		return sheetRange{name: name}
	}

	colSchool := 1
	colClass := 2
	colDayStart := 3
	colDayEnd := colDayStart + b.days - 1
	colSum := colDayEnd + 1
	colMoney := colSum + 1
	lastCol := colName(colMoney)

	const headerRow = 6
	startRow := headerRow + 1

	b.set(name, "A1", dataSheetTitle)
	b.merge(name, "A1", lastCol+"1")
	b.style(name, "A1", lastCol+"1", b.titleStyle)
	b.set(name, "A2", subtitle)
	b.style(name, "A2", "A2", b.boldStyle)

	b.set(name, "A3", "Giá/sổ (nghìn VND):")
	b.style(name, "A3", "A3", b.boldStyle)
	if b.static {
		b.set(name, "B3", b.price)
	} else {
		b.formula(name, "B3", b.priceRef)
	}
	b.style(name, "B3", "B3", b.priceStyle)

	if b.static {
		b.set(name, "A4", "Giá đã chốt tại thời điểm xuất file.")
	} else {
		b.set(name, "A4", "Sửa giá tại sheet 'Cấu hình' (ô B2) → Tiền tự cập nhật.")
	}
	b.merge(name, "A4", lastCol+"4")
	b.style(name, "A4", lastCol+"4", b.noticeStyle)

	b.set(name, cell(colSchool, headerRow), "Trường")
	b.set(name, cell(colClass, headerRow), "Lớp")
	for d := 1; d <= b.days; d++ {
		b.set(name, cell(colDayStart+d-1, headerRow), fmt.Sprintf("Ngày %d", d))
	}
	b.set(name, cell(colSum, headerRow), "Tổng Sổ")
	b.set(name, cell(colMoney, headerRow), "Tiền (VND)")
	b.style(name, cell(1, headerRow), cell(colMoney, headerRow), b.headerStyle)

	for i, row := range rows {
		r := startRow + i
		b.set(name, cell(colSchool, r), row.School)
		b.set(name, cell(colClass, r), row.Class)
		total := 0
		for d := 0; d < b.days; d++ {
			b.set(name, cell(colDayStart+d, r), row.Days[d])
			total += row.Days[d]
		}
		if b.static {
			b.set(name, cell(colSum, r), total)
			b.set(name, cell(colMoney, r), core.ComputeMoney(total, b.price))
		} else {
			b.formula(name, cell(colSum, r), fmt.Sprintf("SUM(%s%d:%s%d)",
				colName(colDayStart), r, colName(colDayEnd), r))
			b.formula(name, cell(colMoney, r), fmt.Sprintf("ROUND(%s%d*%s*1000,0)",
				colName(colSum), r, b.priceRef))
		}
		b.style(name, cell(colMoney, r), cell(colMoney, r), b.moneyStyle)
	}

	endRow := startRow + len(rows) - 1
	totalRow := endRow + 1
	b.set(name, cell(colClass, totalRow), "TỔNG")
	for c := colDayStart; c <= colMoney; c++ {
		if len(rows) == 0 || b.static {
			b.set(name, cell(c, totalRow), staticColumnTotal(rows, c-colDayStart, b.days, b.price, c == colSum, c == colMoney))
		} else {
			L := colName(c)
			b.formula(name, cell(c, totalRow), fmt.Sprintf("SUM(%s%d:%s%d)", L, startRow, L, endRow))
		}
	}
	b.style(name, cell(colSchool, totalRow), cell(colSum, totalRow), b.totalStyle)
	b.style(name, cell(colMoney, totalRow), cell(colMoney, totalRow), b.totalMoney)

	b.check(b.f.SetColWidth(name, "A", "A", 20))
	b.check(b.f.SetColWidth(name, "B", "B", 12))
	b.check(b.f.SetColWidth(name, colName(colDayStart), colName(colDayEnd), 6))
	b.check(b.f.SetColWidth(name, colName(colSum), colName(colSum), 10))
	b.check(b.f.SetColWidth(name, colName(colMoney), colName(colMoney), 16))
	b.check(b.f.AutoFilter(name, fmt.Sprintf("A%d:%s%d", headerRow, lastCol, headerRow), nil))
	b.freezeRows(name, headerRow)
	b.pageHeader(name, dataSheetTitle)

	return sheetRange{
		name:      name,
		schoolCol: colName(colSchool),
		sumCol:    colName(colSum),
		moneyCol:  colName(colMoney),
		startRow:  startRow,
		endRow:    endRow,
	}
}

// pivotSheet writes three blocks: per-school totals (conditional sums
// over the grand sheet), per-employee totals (straight sums over each
// employee sheet) and a school × employee money cross-tab.
func (b *builder) pivotSheet(agg Aggregates, grand sheetRange, emps []sheetRange) {
	name := b.names.Name(pivotSheetTitle)
	if _, err := b.f.NewSheet(name); err != nil {
		b.check(err)
		return
	}

	schools := distinctSchools(agg.GrandTotal)
	wide := max(3, 2+len(emps))

	b.set(name, "A1", "PIVOT NHANH - TỔNG TIỀN THEO TRƯỜNG / NHÂN VIÊN")
	b.merge(name, "A1", cell(wide, 1))
	b.style(name, "A1", cell(wide, 1), b.titleStyle)
	b.set(name, "A2", "Tháng: "+b.month.Key())
	b.style(name, "A2", "A2", b.boldStyle)
	b.set(name, "A3", "Giá/sổ (nghìn VND):")
	b.style(name, "A3", "A3", b.boldStyle)
	if b.static {
		b.set(name, "B3", b.price)
	} else {
		b.formula(name, "B3", b.priceRef)
	}
	b.style(name, "B3", "B3", b.priceStyle)

	row := 5

	// Block 1: totals per school, filtered from the grand sheet.
	b.set(name, cell(1, row), "Tổng theo Trường")
	b.style(name, cell(1, row), cell(1, row), b.boldStyle)
	row++
	b.set(name, cell(1, row), "Trường")
	b.set(name, cell(2, row), "Tổng Sổ")
	b.set(name, cell(3, row), "Tiền (VND)")
	b.style(name, cell(1, row), cell(3, row), b.headerStyle)
	row++
	blockStart := row
	for _, school := range schools {
		b.set(name, cell(1, row), school)
		if b.static || !grand.hasRows() {
			books := schoolBooks(agg.GrandTotal, school, b.days)
			b.set(name, cell(2, row), books)
			b.set(name, cell(3, row), core.ComputeMoney(books, b.price))
		} else {
			b.formula(name, cell(2, row), sumIf(grand, grand.sumCol, fmt.Sprintf("A%d", row)))
			b.formula(name, cell(3, row), sumIf(grand, grand.moneyCol, fmt.Sprintf("A%d", row)))
		}
		b.style(name, cell(3, row), cell(3, row), b.moneyStyle)
		row++
	}
	row = b.blockTotal(name, row, blockStart, 3, totalBooks(agg.GrandTotal, b.days))
	row++

	// Block 2: totals per employee, summed from each employee's sheet.
	b.set(name, cell(1, row), "Tổng theo Nhân viên")
	b.style(name, cell(1, row), cell(1, row), b.boldStyle)
	row++
	b.set(name, cell(1, row), "Nhân viên")
	b.set(name, cell(2, row), "Tổng Sổ")
	b.set(name, cell(3, row), "Tiền (VND)")
	b.style(name, cell(1, row), cell(3, row), b.headerStyle)
	row++
	blockStart = row
	for _, emp := range emps {
		b.set(name, cell(1, row), emp.label)
		if b.static || !emp.hasRows() {
			books := totalBooks(agg.PerEmployee[emp.label], b.days)
			b.set(name, cell(2, row), books)
			b.set(name, cell(3, row), core.ComputeMoney(books, b.price))
		} else {
			b.formula(name, cell(2, row), sheetSum(emp, emp.sumCol))
			b.formula(name, cell(3, row), sheetSum(emp, emp.moneyCol))
		}
		b.style(name, cell(3, row), cell(3, row), b.moneyStyle)
		row++
	}
	empBooks := 0
	for _, emp := range emps {
		empBooks += totalBooks(agg.PerEmployee[emp.label], b.days)
	}
	row = b.blockTotal(name, row, blockStart, 3, empBooks)
	row++

	// Block 3: school × employee money cross-tab with row and column
	// totals.
	b.set(name, cell(1, row), "Bảng chéo: Trường × Nhân viên (Tiền)")
	b.style(name, cell(1, row), cell(1, row), b.boldStyle)
	row++
	b.set(name, cell(1, row), "Trường")
	for j, emp := range emps {
		b.set(name, cell(2+j, row), emp.label)
	}
	b.set(name, cell(2+len(emps), row), "Tổng theo Trường")
	b.style(name, cell(1, row), cell(2+len(emps), row), b.headerStyle)
	row++
	matrixStart := row
	for _, school := range schools {
		b.set(name, cell(1, row), school)
		for j, emp := range emps {
			c := cell(2+j, row)
			if b.static || !emp.hasRows() {
				books := schoolBooks(agg.PerEmployee[emp.label], school, b.days)
				b.set(name, c, core.ComputeMoney(books, b.price))
			} else {
				b.formula(name, c, sumIf(emp, emp.moneyCol, fmt.Sprintf("$A%d", row)))
			}
			b.style(name, c, c, b.moneyStyle)
		}
		totalCell := cell(2+len(emps), row)
		if len(emps) == 0 {
			b.set(name, totalCell, 0)
		} else if b.static {
			books := schoolBooks(agg.GrandTotal, school, b.days)
			b.set(name, totalCell, core.ComputeMoney(books, b.price))
		} else {
			b.formula(name, totalCell, fmt.Sprintf("SUM(%s%d:%s%d)",
				colName(2), row, colName(1+len(emps)), row))
		}
		b.style(name, totalCell, totalCell, b.totalMoney)
		row++
	}
	matrixEnd := row - 1
	b.set(name, cell(1, row), "TỔNG")
	for c := 2; c <= 2+len(emps); c++ {
		if matrixEnd < matrixStart {
			b.set(name, cell(c, row), 0)
		} else if b.static {
			// Column sums are recomputed rather than referenced.
			continue
		} else {
			L := colName(c)
			b.formula(name, cell(c, row), fmt.Sprintf("SUM(%s%d:%s%d)", L, matrixStart, L, matrixEnd))
		}
		b.style(name, cell(c, row), cell(c, row), b.totalMoney)
	}
	if b.static && matrixEnd >= matrixStart {
		for j, emp := range emps {
			books := totalBooks(agg.PerEmployee[emp.label], b.days)
			b.set(name, cell(2+j, row), core.ComputeMoney(books, b.price))
			b.style(name, cell(2+j, row), cell(2+j, row), b.totalMoney)
		}
		books := totalBooks(agg.GrandTotal, b.days)
		b.set(name, cell(2+len(emps), row), core.ComputeMoney(books, b.price))
		b.style(name, cell(2+len(emps), row), cell(2+len(emps), row), b.totalMoney)
	}
	b.style(name, cell(1, row), cell(1, row), b.totalStyle)

	b.check(b.f.SetColWidth(name, "A", "A", 20))
	if len(emps) > 0 {
		b.check(b.f.SetColWidth(name, colName(2), colName(1+len(emps)), 16))
	}
	b.check(b.f.SetColWidth(name, colName(2+len(emps)), colName(2+len(emps)), 18))
	b.pageHeader(name, "PIVOT NHANH")
}

// blockTotal writes a TỔNG row summing a three-column pivot block and
// returns the next free row. books is the block's precomputed quantity
// total, baked in when the workbook carries values instead of formulas.
func (b *builder) blockTotal(sheet string, row, blockStart, cols, books int) int {
	b.set(sheet, cell(1, row), "TỔNG")
	blockEnd := row - 1
	for c := 2; c <= cols; c++ {
		switch {
		case blockEnd < blockStart:
			b.set(sheet, cell(c, row), 0)
		case b.static:
			if c == cols {
				b.set(sheet, cell(c, row), core.ComputeMoney(books, b.price))
			} else {
				b.set(sheet, cell(c, row), books)
			}
		default:
			L := colName(c)
			b.formula(sheet, cell(c, row), fmt.Sprintf("SUM(%s%d:%s%d)", L, blockStart, L, blockEnd))
		}
	}
	b.style(sheet, cell(1, row), cell(cols-1, row), b.totalStyle)
	b.style(sheet, cell(cols, row), cell(cols, row), b.totalMoney)
	return row + 1
}

func (b *builder) pageHeader(sheet, title string) {
	b.check(b.f.SetHeaderFooter(sheet, &excelize.HeaderFooterOptions{
		OddHeader: fmt.Sprintf("&LMã BC: %s&C%s&RTháng %s", ReportCode, title, b.month.Key()),
		OddFooter: fmt.Sprintf("&L%s&CTrang &P/&N&RIn: &D &T", b.owner),
	}))
}

func (b *builder) freezeRows(sheet string, rows int) {
	b.check(b.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      rows,
		TopLeftCell: cell(1, rows+1),
		ActivePane:  "bottomLeft",
	}))
}

func (b *builder) set(sheet, cellRef string, v any) {
	if b.err != nil {
		return
	}
	b.err = b.f.SetCellValue(sheet, cellRef, v)
}

func (b *builder) formula(sheet, cellRef, formula string) {
	if b.err != nil {
		return
	}
	b.err = b.f.SetCellFormula(sheet, cellRef, formula)
}

func (b *builder) style(sheet, from, to string, styleID int) {
	if b.err != nil {
		return
	}
	b.err = b.f.SetCellStyle(sheet, from, to, styleID)
}

func (b *builder) merge(sheet, from, to string) {
	if b.err != nil {
		return
	}
	b.err = b.f.MergeCell(sheet, from, to)
}

func (b *builder) check(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// sumIf builds a SUMIF over a data sheet: rows whose school column
// matches criteria contribute their valueCol cell.
func sumIf(rng sheetRange, valueCol, criteria string) string {
	return fmt.Sprintf("SUMIF('%s'!%s$%d:%s$%d,%s,'%s'!%s$%d:%s$%d)",
		rng.name, rng.schoolCol, rng.startRow, rng.schoolCol, rng.endRow,
		criteria,
		rng.name, valueCol, rng.startRow, valueCol, rng.endRow)
}

func sheetSum(rng sheetRange, col string) string {
	return fmt.Sprintf("SUM('%s'!%s$%d:%s$%d)", rng.name, col, rng.startRow, col, rng.endRow)
}

func distinctSchools(rows []core.SummaryRow) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.School] {
			seen[r.School] = true
			out = append(out, r.School)
		}
	}
	return out
}

func schoolBooks(rows []core.SummaryRow, school string, days int) int {
	total := 0
	for _, r := range rows {
		if r.School != school {
			continue
		}
		for d := 0; d < days; d++ {
			total += r.Days[d]
		}
	}
	return total
}

func totalBooks(rows []core.SummaryRow, days int) int {
	total := 0
	for _, r := range rows {
		for d := 0; d < days; d++ {
			total += r.Days[d]
		}
	}
	return total
}

// staticColumnTotal computes a totals-row cell without formulas:
// dayIdx selects a day column unless the cell is the row-sum or money
// column.
func staticColumnTotal(rows []core.SummaryRow, dayIdx, days int, price float64, isSum, isMoney bool) any {
	if isMoney {
		return core.ComputeMoney(totalBooks(rows, days), price)
	}
	if isSum {
		return totalBooks(rows, days)
	}
	total := 0
	for _, r := range rows {
		total += r.Days[dayIdx]
	}
	return total
}

func cell(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

func colName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
