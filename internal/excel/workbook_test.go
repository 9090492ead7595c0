package excel

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"soyte/internal/core"
)

func testAggregates() Aggregates {
	var rowA, rowB core.SummaryRow
	rowA.School, rowA.Class = "Trường A", "1A"
	rowA.Days[0] = 10
	rowB.School, rowB.Class = "Trường B", "2B"
	rowB.Days[1] = 5

	return Aggregates{
		GrandTotal: []core.SummaryRow{rowA, rowB},
		PerEmployee: map[string][]core.SummaryRow{
			"X": {rowA},
			"Y": {rowB},
		},
	}
}

func buildTest(t *testing.T, strategy Strategy) *excelize.File {
	t.Helper()
	p := Projector{Strategy: strategy, Price: 3.5}
	f, err := p.Build(core.Month{Year: 2024, Month: 1}, testAggregates())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return f
}

func TestBuildSheetOrder(t *testing.T) {
	f := buildTest(t, FormulaLinked)
	want := []string{"Cấu hình", "X", "Y", "Tổng chung", "Pivot nhanh"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}
}

func TestBuildFormulaLinkedMoneyCells(t *testing.T) {
	f := buildTest(t, FormulaLinked)

	// January has 31 day columns: C..AG, sum in AH, money in AI, data
	// rows start at 7.
	price, err := f.GetCellValue("Cấu hình", "B2")
	if err != nil || price != "3.5" {
		t.Fatalf("config price = %q, err %v", price, err)
	}

	sum, _ := f.GetCellFormula("Tổng chung", "AH7")
	if sum != "SUM(C7:AG7)" {
		t.Fatalf("row sum formula = %q", sum)
	}
	money, _ := f.GetCellFormula("Tổng chung", "AI7")
	if money != "ROUND(AH7*'Cấu hình'!$B$2*1000,0)" {
		t.Fatalf("money formula = %q", money)
	}

	linked, _ := f.GetCellFormula("Tổng chung", "B3")
	if linked != "'Cấu hình'!$B$2" {
		t.Fatalf("linked price formula = %q", linked)
	}

	total, _ := f.GetCellFormula("Tổng chung", "AI9")
	if total != "SUM(AI7:AI8)" {
		t.Fatalf("totals row formula = %q", total)
	}
}

func TestBuildEveryMoneyFormulaReferencesConfigCell(t *testing.T) {
	f := buildTest(t, FormulaLinked)
	for _, sheet := range []string{"X", "Y", "Tổng chung"} {
		for _, cell := range []string{"AI7"} {
			formula, err := f.GetCellFormula(sheet, cell)
			if err != nil {
				t.Fatalf("%s!%s: %v", sheet, cell, err)
			}
			if !strings.Contains(formula, "'Cấu hình'!$B$2") {
				t.Errorf("%s!%s = %q does not reference the config price cell", sheet, cell, formula)
			}
		}
	}
}

func TestBuildPivotFormulas(t *testing.T) {
	f := buildTest(t, FormulaLinked)

	// Block 1 (per school) starts at row 7; the grand sheet holds two
	// data rows at 7..8.
	books, _ := f.GetCellFormula("Pivot nhanh", "B7")
	if books != "SUMIF('Tổng chung'!A$7:A$8,A7,'Tổng chung'!AH$7:AH$8)" {
		t.Fatalf("school books formula = %q", books)
	}
	money, _ := f.GetCellFormula("Pivot nhanh", "C7")
	if money != "SUMIF('Tổng chung'!A$7:A$8,A7,'Tổng chung'!AI$7:AI$8)" {
		t.Fatalf("school money formula = %q", money)
	}

	// Block 2 (per employee) rows land at 13..14; each sums that
	// employee's own sheet.
	empBooks, _ := f.GetCellFormula("Pivot nhanh", "B13")
	if empBooks != "SUM('X'!AH$7:AH$7)" {
		t.Fatalf("employee books formula = %q", empBooks)
	}

	// Cross-tab rows start at 19: school per row, employee per column.
	cross, _ := f.GetCellFormula("Pivot nhanh", "B19")
	if cross != "SUMIF('X'!A$7:A$7,$A19,'X'!AI$7:AI$7)" {
		t.Fatalf("cross-tab formula = %q", cross)
	}

	school, _ := f.GetCellValue("Pivot nhanh", "A7")
	if school != "Trường A" {
		t.Fatalf("pivot school = %q", school)
	}
}

func TestBuildStaticValues(t *testing.T) {
	f := buildTest(t, StaticValues)

	formula, _ := f.GetCellFormula("Tổng chung", "AI7")
	if formula != "" {
		t.Fatalf("static build wrote a formula: %q", formula)
	}
	money, _ := f.GetCellValue("Tổng chung", "AI7", excelize.Options{RawCellValue: true})
	if money != "35000" {
		t.Fatalf("static money = %q, want 35000", money)
	}
	sum, _ := f.GetCellValue("Tổng chung", "AH7")
	if sum != "10" {
		t.Fatalf("static sum = %q, want 10", sum)
	}
}

func TestBuildStaticPivotTotals(t *testing.T) {
	f := buildTest(t, StaticValues)

	// Block 1 TỔNG lands at row 9, block 2 at row 15; a static build
	// bakes them like every other cell.
	for _, ref := range []string{"B9", "C9", "B15", "C15"} {
		if formula, _ := f.GetCellFormula("Pivot nhanh", ref); formula != "" {
			t.Errorf("static pivot total %s holds a formula: %q", ref, formula)
		}
	}
	if books, _ := f.GetCellValue("Pivot nhanh", "B9"); books != "15" {
		t.Fatalf("school block total books = %q, want 15", books)
	}
	if money, _ := f.GetCellValue("Pivot nhanh", "C9", excelize.Options{RawCellValue: true}); money != "52500" {
		t.Fatalf("school block total money = %q, want 52500", money)
	}
	if money, _ := f.GetCellValue("Pivot nhanh", "C15", excelize.Options{RawCellValue: true}); money != "52500" {
		t.Fatalf("employee block total money = %q, want 52500", money)
	}
}

func TestBuildEmptyMonth(t *testing.T) {
	p := Projector{Strategy: FormulaLinked, Price: 3.5}
	f, err := p.Build(core.Month{Year: 2024, Month: 2}, Aggregates{
		PerEmployee: map[string][]core.SummaryRow{},
	})
	if err != nil {
		t.Fatalf("build empty: %v", err)
	}
	// Totals row sits directly under the header with static zeros.
	total, _ := f.GetCellValue("Tổng chung", "AF7")
	if total != "0" {
		t.Fatalf("empty totals = %q", total)
	}
}

func TestFilename(t *testing.T) {
	got := Filename(core.Month{Year: 2024, Month: 3})
	if got != "so_y_te_2024-03_cong_thuc_pivot_config.xlsx" {
		t.Fatalf("filename = %q", got)
	}
}
