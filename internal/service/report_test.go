package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/activity-tracker/internal/model"
)

type sheet struct {
	header  []string
	data    [][]string
	summary map[string]string
	meta    map[string]string
}

func readSheet(t *testing.T, content []byte) sheet {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(ReportSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)

	out := sheet{summary: map[string]string{}, meta: map[string]string{}}
	headerAt := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "Fecha" {
			headerAt = i
			out.header = r
			break
		}
		if len(r) == 2 && strings.HasSuffix(r[0], ":") {
			out.meta[strings.TrimSuffix(r[0], ":")] = r[1]
		}
	}
	require.GreaterOrEqual(t, headerAt, 0, "header row")
	i := headerAt + 1
	for ; i < len(rows) && len(rows[i]) > 0; i++ {
		out.data = append(out.data, rows[i])
	}
	for ; i < len(rows); i++ {
		if len(rows[i]) >= 2 {
			out.summary[rows[i][0]] = rows[i][1]
		}
	}
	return out
}

func reportNow() time.Time { return time.Date(2025, 3, 20, 16, 45, 0, 0, time.UTC) }

func TestReportTwoActivitiesAllProjects(t *testing.T) {
	f := newFixture(t)
	pid := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Portal", Active: true})
	a := f.addActivity("2025-03-05", "09:00", "10:30", model.StatusSubmitted, &pid)
	f.addActivity("2025-03-06", "14:00", "16:00", "enviada", nil)
	f.addActivity("2025-03-07", "09:00", "10:00", model.StatusDraft, &pid)
	f.addActivity("2025-02-20", "09:00", "10:00", model.StatusSubmitted, &pid)
	f.store.AddComment(model.Comment{ActivityID: a, UserID: f.supervisor.ID, Content: "Bien"})
	f.store.AddComment(model.Comment{ActivityID: a, UserID: f.employee.ID, Content: "Gracias"})
	f.store.AddComment(model.Comment{ActivityID: a, UserID: f.employee.ID, Content: "borrado", Deleted: true})

	rep, err := f.reports.Generate(context.Background(), ReportRequest{
		SupervisedUserID: f.employee.ID,
		SupervisorID:     f.supervisor.ID,
		Format:           "excel",
		GroupBy:          "none",
		Now:              reportNow(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Rows)
	assert.InDelta(t, 3.5, rep.TotalHours, 1e-9)
	assert.Equal(t, "informe_supervisado_"+strconv.FormatUint(f.employee.ID, 10)+"_2025-03-20.xlsx", rep.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rep.ContentType)

	sh := readSheet(t, rep.Content)
	assert.Equal(t, []string{"Fecha", "Proyecto", "Descripción", "Tipo de actividad", "Horas", "Comentarios"}, sh.header)
	require.Len(t, sh.data, 2)
	assert.Equal(t, "2025-03-05", sh.data[0][0])
	assert.Equal(t, "Portal", sh.data[0][1])
	assert.Equal(t, "1.5", sh.data[0][4])
	assert.Equal(t, "Bien; Gracias", sh.data[0][5])
	assert.Equal(t, "2025-03-06", sh.data[1][0])

	total, err := strconv.ParseFloat(sh.summary[TotalHoursLabel], 64)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, total, 1e-9)
	assert.Equal(t, "2", sh.summary[TotalActivitiesLabel])

	assert.Equal(t, "Luis Pérez", sh.meta["Funcionario"])
	assert.Equal(t, AllProjectsLabel, sh.meta["Proyecto"])
	assert.Equal(t, "2025-03-01 al 2025-03-20", sh.meta["Período"])
	assert.Equal(t, "Ana Rojas", sh.meta["Generado por"])
}

func TestReportEmptyStillRenders(t *testing.T) {
	f := newFixture(t)
	rep, err := f.reports.Generate(context.Background(), ReportRequest{
		SupervisedUserID: f.employee.ID,
		SupervisorID:     f.supervisor.ID,
		Now:              reportNow(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Rows)

	sh := readSheet(t, rep.Content)
	assert.Empty(t, sh.data)
	assert.Equal(t, "0", sh.summary[TotalHoursLabel])
	assert.Equal(t, "0", sh.summary[TotalActivitiesLabel])
}

func TestReportProjectFilterDropsProjectColumn(t *testing.T) {
	f := newFixture(t)
	pid := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Portal", Active: true})
	other := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Otro", Active: true})
	f.addActivity("2025-03-05", "09:00", "10:00", model.StatusSubmitted, &pid)
	f.addActivity("2025-03-05", "11:00", "12:00", model.StatusSubmitted, &other)

	rep, err := f.reports.Generate(context.Background(), ReportRequest{
		SupervisedUserID: f.employee.ID,
		SupervisorID:     f.supervisor.ID,
		ProjectID:        &pid,
		Now:              reportNow(),
	})
	require.NoError(t, err)
	sh := readSheet(t, rep.Content)
	assert.NotContains(t, sh.header, "Proyecto")
	assert.Len(t, sh.data, 1)
	assert.Equal(t, "Portal", sh.meta["Proyecto"])
}

func TestReportInactiveProject(t *testing.T) {
	f := newFixture(t)
	pid := f.store.AddProject(model.Project{SupervisorID: f.supervisor.ID, Name: "Cerrado", Active: false})
	f.addActivity("2025-03-05", "09:00", "10:00", model.StatusSubmitted, &pid)
	req := ReportRequest{
		SupervisedUserID: f.employee.ID,
		SupervisorID:     f.supervisor.ID,
		ProjectID:        &pid,
		Now:              reportNow(),
	}

	rep, err := f.reports.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrInactiveProject)
	assert.Nil(t, rep)

	req.IncludeInactive = true
	rep, err = f.reports.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Rows)
}

func TestReportRequiresSupervision(t *testing.T) {
	f := newFixture(t)
	req := ReportRequest{SupervisedUserID: f.employee.ID, SupervisorID: f.outsider.ID, Now: reportNow()}

	rep, err := f.reports.Generate(context.Background(), req)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, rep)

	req.AdminOverride = true
	_, err = f.reports.Generate(context.Background(), req)
	assert.NoError(t, err)
}

func TestReportMissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reports.Generate(ctx, ReportRequest{SupervisedUserID: 999, SupervisorID: f.supervisor.ID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "usuario supervisado no encontrado", err.Error())

	_, err = f.reports.Generate(ctx, ReportRequest{SupervisedUserID: f.employee.ID, SupervisorID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.reports.Generate(ctx, ReportRequest{SupervisedUserID: f.employee.ID, SupervisorID: f.supervisor.ID, ProjectID: ptr(uint64(999))})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportFormatsAndGrouping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := ReportRequest{SupervisedUserID: f.employee.ID, SupervisorID: f.supervisor.ID, Now: reportNow()}

	req := base
	req.Format = "pdf"
	_, err := f.reports.Generate(ctx, req)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	req = base
	req.Format = "docx"
	_, err = f.reports.Generate(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = base
	req.GroupBy = "quarter"
	_, err = f.reports.Generate(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = base
	req.DateFrom, req.DateTo = ptr(day("2025-03-10")), ptr(day("2025-03-01"))
	_, err = f.reports.Generate(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportCSV(t *testing.T) {
	f := newFixture(t)
	f.addActivity("2025-03-05", "09:00", "10:15", model.StatusSubmitted, nil)

	rep, err := f.reports.Generate(context.Background(), ReportRequest{
		SupervisedUserID: f.employee.ID,
		SupervisorID:     f.supervisor.ID,
		Format:           "csv",
		Now:              reportNow(),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rep.Filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", rep.ContentType)

	r := csv.NewReader(bytes.NewReader(rep.Content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	var header, row, total []string
	for i, rec := range records {
		if len(rec) > 0 && rec[0] == "Fecha" {
			header, row = rec, records[i+1]
		}
		if len(rec) > 0 && rec[0] == TotalHoursLabel {
			total = rec
		}
	}
	assert.Equal(t, []string{"Fecha", "Proyecto", "Descripción", "Tipo de actividad", "Horas", "Comentarios"}, header)
	assert.Equal(t, "1.25", row[4])
	assert.Equal(t, []string{TotalHoursLabel, "1.25"}, total)
}

func TestGroupActivities(t *testing.T) {
	mk := func(id uint64, date string) model.Activity { return model.Activity{ID: id, Date: day(date)} }
	ids := func(list []model.Activity) []uint64 {
		out := make([]uint64, len(list))
		for i, a := range list {
			out[i] = a.ID
		}
		return out
	}
	// 2024-12-30 belongs to ISO week 1 of 2025; 2024-12-29 to week 52 of 2024.
	list := []model.Activity{mk(1, "2025-01-02"), mk(2, "2024-12-29"), mk(3, "2024-12-30"), mk(4, "2024-12-01")}

	week := append([]model.Activity(nil), list...)
	groupActivities(week, GroupWeek)
	assert.Equal(t, []uint64{4, 2, 1, 3}, ids(week))

	month := append([]model.Activity(nil), list...)
	groupActivities(month, GroupMonth)
	assert.Equal(t, []uint64{2, 3, 4, 1}, ids(month))

	byDay := append([]model.Activity(nil), list...)
	groupActivities(byDay, GroupDay)
	assert.Equal(t, []uint64{4, 2, 3, 1}, ids(byDay))

	none := append([]model.Activity(nil), list...)
	groupActivities(none, GroupNone)
	assert.Equal(t, []uint64{1, 2, 3, 4}, ids(none))
}
