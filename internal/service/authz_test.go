package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/activity-tracker/internal/model"
)

func TestAuthorize(t *testing.T) {
	sup := uint64(10)
	employee := Caller{ID: 1, Role: model.RoleEmployee}
	supervisor := Caller{ID: sup, Role: model.RoleSupervisor}
	stranger := Caller{ID: 20, Role: model.RoleSupervisor}
	admin := Caller{ID: 99, Role: model.RoleAdmin}

	activity := Resource{Kind: KindActivity, OwnerID: 1, OwnerSupervisorID: &sup}
	project := Resource{Kind: KindProject, OwnerID: sup}
	member := Resource{Kind: KindProject, OwnerID: sup, Member: true}
	profile := Resource{Kind: KindUser, OwnerID: 1, OwnerSupervisorID: &sup}
	comment := Resource{Kind: KindComment, OwnerID: 1}

	cases := []struct {
		name   string
		caller Caller
		res    Resource
		action Action
		ok     bool
	}{
		{"owner edits activity", employee, activity, ActionWrite, true},
		{"owner submits", employee, activity, ActionSubmit, true},
		{"supervisor reads activity", supervisor, activity, ActionRead, true},
		{"supervisor comments", supervisor, activity, ActionComment, true},
		{"supervisor cannot edit", supervisor, activity, ActionWrite, false},
		{"stranger cannot read", stranger, activity, ActionRead, false},
		{"admin edits", admin, activity, ActionDelete, true},
		{"supervisor manages own project", supervisor, project, ActionManage, true},
		{"stranger cannot manage", stranger, project, ActionManage, false},
		{"member reads project", employee, member, ActionRead, true},
		{"member cannot manage", employee, member, ActionManage, false},
		{"non member cannot read", employee, project, ActionRead, false},
		{"supervisor exports", supervisor, profile, ActionExport, true},
		{"stranger cannot export", stranger, profile, ActionExport, false},
		{"user reads self", employee, profile, ActionRead, true},
		{"user cannot export self", employee, profile, ActionExport, false},
		{"author deletes comment", employee, comment, ActionDelete, true},
		{"supervisor cannot delete comment", supervisor, comment, ActionDelete, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Authorize(c.caller, c.res, c.action)
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}

	assert.ErrorIs(t, Authorize(Caller{}, activity, ActionRead), ErrUnauthenticated)
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "hora requerida", PublicMessage(Invalid("hora", "hora requerida")))
	assert.Equal(t, "proyecto no encontrado", PublicMessage(newError(ErrNotFound, "proyecto no encontrado")))
	assert.Equal(t, "forbidden", PublicMessage(ErrForbidden))
	assert.Equal(t, "", PublicMessage(assert.AnError))
}
