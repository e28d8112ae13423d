package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// ReportSheet is the worksheet name of excel reports.
const ReportSheet = "Informe"

// Labels of the summary band.
const (
	TotalHoursLabel      = "Total horas"
	TotalActivitiesLabel = "Total actividades"
)

// columns returns the header row; Proyecto only appears when the report
// spans all projects.
func (d reportData) columns() []string {
	cols := []string{"Fecha"}
	if d.ShowProject {
		cols = append(cols, "Proyecto")
	}
	return append(cols, "Descripción", "Tipo de actividad", "Horas", "Comentarios")
}

func (d reportData) values(r ReportRow) []any {
	vals := []any{r.Date.Format(model.DateLayout)}
	if d.ShowProject {
		vals = append(vals, r.Project)
	}
	return append(vals, r.Description, r.Type, r.Hours, r.Comments)
}

func (d reportData) period() string {
	return fmt.Sprintf("%s al %s", d.From.Format(model.DateLayout), d.To.Format(model.DateLayout))
}

func (d reportData) metadata() [][2]string {
	return [][2]string{
		{"Funcionario", d.UserName},
		{"Proyecto", d.ProjectName},
		{"Período", d.period()},
		{"Generado", d.GeneratedAt.Format("2006-01-02 15:04")},
		{"Generado por", d.GeneratedBy},
	}
}

// excelStyles holds the style ids used by renderExcel.
type excelStyles struct {
	title, metaKey, header, even, odd, hours, summary int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var (
		st  excelStyles
		err error
	)
	border := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.metaKey, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
			Border:    border,
		}},
		{&st.even, &excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    border,
		}},
		{&st.odd, &excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    border,
		}},
		{&st.hours, &excelize.Style{NumFmt: 2, Border: border}},
		{&st.summary, &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
		}},
	}
	for _, def := range defs {
		if *def.dst, err = f.NewStyle(def.style); err != nil {
			return st, err
		}
	}
	return st, nil
}

// renderExcel lays out the report as title band, metadata band, header,
// shaded data rows and a summary band.
func renderExcel(d reportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   d.Title,
		Creator: d.Author,
		Subject: d.UserName,
	})
	st, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	cols := d.columns()
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	cell := func(col, row int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}

	// title band
	if err := f.SetCellValue(ReportSheet, "A1", d.Title); err != nil {
		return nil, err
	}
	if err := f.MergeCell(ReportSheet, "A1", lastCol+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ReportSheet, "A1", lastCol+"1", st.title); err != nil {
		return nil, err
	}
	_ = f.SetRowHeight(ReportSheet, 1, 28)

	row := 3
	for _, kv := range d.metadata() {
		if err := f.SetSheetRow(ReportSheet, cell(1, row), &[]any{kv[0] + ":", kv[1]}); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(ReportSheet, cell(1, row), cell(1, row), st.metaKey)
		row++
	}

	row++
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(ReportSheet, cell(1, row), &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ReportSheet, cell(1, row), cell(len(cols), row), st.header); err != nil {
		return nil, err
	}
	row++

	hoursCol := len(cols) - 1
	for i, r := range d.Rows {
		vals := d.values(r)
		if err := f.SetSheetRow(ReportSheet, cell(1, row), &vals); err != nil {
			return nil, err
		}
		shade := st.odd
		if i%2 == 0 {
			shade = st.even
		}
		if err := f.SetCellStyle(ReportSheet, cell(1, row), cell(len(cols), row), shade); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(ReportSheet, cell(hoursCol, row), cell(hoursCol, row), st.hours)
		row++
	}

	row++
	summary := [][]any{
		{TotalHoursLabel, d.TotalHours},
		{TotalActivitiesLabel, len(d.Rows)},
	}
	for _, s := range summary {
		vals := s
		if err := f.SetSheetRow(ReportSheet, cell(1, row), &vals); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(ReportSheet, cell(1, row), cell(2, row), st.summary)
		row++
	}

	widths := map[string]float64{
		"Fecha": 12, "Proyecto": 24, "Descripción": 48, "Tipo de actividad": 20, "Horas": 8, "Comentarios": 40,
	}
	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(ReportSheet, name, name, widths[c])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderCSV writes the same metadata, columns and summary without styling.
func renderCSV(d reportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{d.Title}}
	for _, kv := range d.metadata() {
		records = append(records, []string{kv[0] + ":", kv[1]})
	}
	records = append(records, []string{}, d.columns())
	for _, r := range d.Rows {
		rec := []string{r.Date.Format(model.DateLayout)}
		if d.ShowProject {
			rec = append(rec, r.Project)
		}
		rec = append(rec, r.Description, r.Type, strconv.FormatFloat(r.Hours, 'f', 2, 64), r.Comments)
		records = append(records, rec)
	}
	records = append(records,
		[]string{},
		[]string{TotalHoursLabel, strconv.FormatFloat(d.TotalHours, 'f', 2, 64)},
		[]string{TotalActivitiesLabel, strconv.Itoa(len(d.Rows))},
	)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
