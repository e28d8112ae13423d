package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/repository"
)

// Report formats.
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

// Report grouping granularities.
const (
	GroupNone  = "none"
	GroupDay   = "day"
	GroupWeek  = "week"
	GroupMonth = "month"
)

// AllProjectsLabel is printed in the metadata band when no project filter
// was applied.
const AllProjectsLabel = "Todos los proyectos"

// ReportRequest selects what goes into a supervisor report.  Nil dates
// default to the month of Now up to Now's day.
type ReportRequest struct {
	SupervisedUserID uint64
	SupervisorID     uint64
	ProjectID        *uint64
	DateFrom         *time.Time
	DateTo           *time.Time
	Format           string
	GroupBy          string
	IncludeInactive  bool
	AdminOverride    bool
	Now              time.Time
}

// Report is a rendered export.
type Report struct {
	Content     []byte
	Filename    string
	ContentType string
	Rows        int
	TotalHours  float64
}

// ReportRow is one activity line of a report.
type ReportRow struct {
	Date        time.Time
	Project     string
	Description string
	Type        string
	Hours       float64
	Comments    string
}

// reportData is everything the renderers need.
type reportData struct {
	Title       string
	UserName    string
	ProjectName string
	ShowProject bool
	From, To    time.Time
	GeneratedAt time.Time
	GeneratedBy string
	Author      string
	Rows        []ReportRow
	TotalHours  float64
}

// ReportService builds supervisor exports of submitted activities.
type ReportService struct {
	activities ActivityStore
	projects   ProjectStore
	users      UserStore
	comments   CommentStore
	author     string
}

// NewReportService wires the report builder.  author is recorded as the
// generating application in the document metadata.
func NewReportService(activities ActivityStore, projects ProjectStore, users UserStore, comments CommentStore, author string) *ReportService {
	return &ReportService{activities: activities, projects: projects, users: users, comments: comments, author: author}
}

// NormalizeFormat maps request spellings to a report format.  PDF is
// recognised but has no renderer.
func NormalizeFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", "excel", "xlsx":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return "", newError(ErrUnsupportedFormat, "el formato pdf no está disponible; use excel o csv")
	}
	return "", Invalid("formato", "formato desconocido: %q", f)
}

// NormalizeGroupBy maps request spellings to a grouping.
func NormalizeGroupBy(g string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "", "none", "ninguno":
		return GroupNone, nil
	case "day", "dia", "día":
		return GroupDay, nil
	case "week", "semana":
		return GroupWeek, nil
	case "month", "mes":
		return GroupMonth, nil
	}
	return "", Invalid("agruparPor", "agrupación desconocida: %q", g)
}

// Generate validates the request, loads the submitted activities of the
// supervised user and renders them.  No content is produced on error.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*Report, error) {
	format, err := NormalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}
	groupBy, err := NormalizeGroupBy(req.GroupBy)
	if err != nil {
		return nil, err
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	supervised, err := s.users.GetByID(ctx, req.SupervisedUserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrNotFound, "usuario supervisado no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load supervised user: %w", err)
	}
	supervisor, err := s.users.GetByID(ctx, req.SupervisorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, newError(ErrNotFound, "supervisor no encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("load supervisor: %w", err)
	}
	if !req.AdminOverride {
		if supervised.SupervisorID == nil || *supervised.SupervisorID != supervisor.ID {
			return nil, newError(ErrForbidden, "no tiene permisos para generar el informe de este usuario")
		}
	}

	data := reportData{
		Title:       "Informe de actividades",
		UserName:    displayName(*supervised),
		ProjectName: AllProjectsLabel,
		ShowProject: req.ProjectID == nil,
		GeneratedAt: req.Now,
		GeneratedBy: displayName(*supervisor),
		Author:      s.author,
	}
	if req.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *req.ProjectID)
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, newError(ErrNotFound, "proyecto no encontrado")
		}
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		if !p.Active && !req.IncludeInactive {
			return nil, newError(ErrInactiveProject, "el proyecto %q está inactivo", p.Name)
		}
		data.ProjectName = p.Name
	}

	today := truncateDay(req.Now)
	data.From = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	data.To = today
	if req.DateFrom != nil {
		data.From = truncateDay(*req.DateFrom)
	}
	if req.DateTo != nil {
		data.To = truncateDay(*req.DateTo)
	}
	if data.From.After(data.To) {
		return nil, Invalid("fechaInicio", "fechaInicio no puede ser posterior a fechaFin")
	}

	list, err := s.activities.Find(ctx, model.ActivityFilter{
		UserID:    supervised.ID,
		ProjectID: req.ProjectID,
		From:      &data.From,
		To:        &data.To,
		Statuses:  []model.ActivityStatus{model.StatusSubmitted},
	})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	kept := list[:0]
	for _, a := range list {
		if !a.Status.IsSubmitted() {
			continue
		}
		if req.ProjectID != nil && (a.ProjectID == nil || *a.ProjectID != *req.ProjectID) {
			continue
		}
		kept = append(kept, a)
	}
	groupActivities(kept, groupBy)

	ids := make([]uint64, len(kept))
	for i, a := range kept {
		ids[i] = a.ID
	}
	comments, err := s.comments.ListByActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	data.Rows = make([]ReportRow, 0, len(kept))
	for _, a := range kept {
		var texts []string
		for _, c := range comments[a.ID] {
			if !c.Deleted && strings.TrimSpace(c.Content) != "" {
				texts = append(texts, strings.TrimSpace(c.Content))
			}
		}
		row := ReportRow{
			Date:        a.Date,
			Project:     a.ProjectName,
			Description: a.Description,
			Type:        a.Type,
			Hours:       round2(a.Hours()),
			Comments:    strings.Join(texts, "; "),
		}
		data.Rows = append(data.Rows, row)
		data.TotalHours += a.Hours()
	}
	data.TotalHours = round2(data.TotalHours)

	var (
		content    []byte
		ext, ctype string
	)
	switch format {
	case FormatCSV:
		content, err = renderCSV(data)
		ext, ctype = "csv", "text/csv; charset=utf-8"
	default:
		content, err = renderExcel(data)
		ext, ctype = "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	reportsGenerated.WithLabelValues(format).Inc()

	return &Report{
		Content:     content,
		Filename:    fmt.Sprintf("informe_supervisado_%d_%s.%s", supervised.ID, today.Format(model.DateLayout), ext),
		ContentType: ctype,
		Rows:        len(data.Rows),
		TotalHours:  data.TotalHours,
	}, nil
}

// groupActivities orders activities by the chosen granularity.  The sort
// is stable so activities in the same bucket keep their fetch order.
func groupActivities(list []model.Activity, groupBy string) {
	var key func(model.Activity) int
	switch groupBy {
	case GroupDay:
		key = func(a model.Activity) int {
			y, m, d := a.Date.Date()
			return y*10000 + int(m)*100 + d
		}
	case GroupWeek:
		key = func(a model.Activity) int {
			y, w := a.Date.ISOWeek()
			return y*100 + w
		}
	case GroupMonth:
		key = func(a model.Activity) int {
			return a.Date.Year()*100 + int(a.Date.Month())
		}
	default:
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return key(list[i]) < key(list[j]) })
}

func displayName(u model.User) string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Email
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
