package service

import (
	"testing"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
	"github.com/iliyamo/activity-tracker/internal/testsupport"
)

type fixture struct {
	store  *testsupport.Store
	events *testsupport.Events
	files  *testsupport.Files

	activities *ActivityService
	projects   *ProjectService
	comments   *CommentService
	documents  *DocumentService
	users      *UserService
	stats      *StatsService
	reports    *ReportService

	supervisor Caller // supervises employee
	employee   Caller
	outsider   Caller // another supervisor
	admin      Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testsupport.NewStore()
	ev := &testsupport.Events{}
	files := testsupport.NewFiles()

	supID := st.AddUser(model.User{Email: "sup@example.com", FirstName: "Ana", LastName: "Rojas", Role: model.RoleSupervisor})
	empID := st.AddUser(model.User{Email: "emp@example.com", FirstName: "Luis", LastName: "Pérez", Role: model.RoleEmployee, SupervisorID: &supID})
	outID := st.AddUser(model.User{Email: "out@example.com", FirstName: "Eva", LastName: "Soto", Role: model.RoleSupervisor})
	admID := st.AddUser(model.User{Email: "adm@example.com", FirstName: "Root", Role: model.RoleAdmin})

	acts := NewActivityService(st.Activities(), st.Projects(), st.Users(), ev, nil)
	return &fixture{
		store:      st,
		events:     ev,
		files:      files,
		activities: acts,
		projects:   NewProjectService(st.Projects(), st.Assignments(), st.Users()),
		comments:   NewCommentService(st.Comments(), acts, ev, nil),
		documents:  NewDocumentService(st.Documents(), files, acts, 1024, nil),
		users:      NewUserService(st.Users(), 4),
		stats:      NewStatsService(st.Activities(), st.Projects(), st.Users(), st.Assignments()),
		reports:    NewReportService(st.Activities(), st.Projects(), st.Users(), st.Comments(), "Sistema de Actividades"),
		supervisor: Caller{ID: supID, Role: model.RoleSupervisor},
		employee:   Caller{ID: empID, Role: model.RoleEmployee},
		outsider:   Caller{ID: outID, Role: model.RoleSupervisor},
		admin:      Caller{ID: admID, Role: model.RoleAdmin},
	}
}

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// addActivity seeds an activity for the employee.
func (f *fixture) addActivity(date, start, end string, status model.ActivityStatus, project *uint64) uint64 {
	return f.store.AddActivity(model.Activity{
		UserID:      f.employee.ID,
		ProjectID:   project,
		Date:        day(date),
		StartTime:   start,
		EndTime:     end,
		Description: "trabajo " + start,
		Type:        "Desarrollo",
		Status:      status,
	})
}
