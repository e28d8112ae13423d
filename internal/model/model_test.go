package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestParseStatusAliases(t *testing.T) {
    cases := map[string]ActivityStatus{
        "draft":      StatusDraft,
        "Borrador":   StatusDraft,
        "submitted":  StatusSubmitted,
        "enviada":    StatusSubmitted,
        " ENVIADO ":  StatusSubmitted,
        "completada": StatusSubmitted,
    }
    for in, want := range cases {
        got, ok := ParseStatus(in)
        assert.True(t, ok, in)
        assert.Equal(t, want, got, in)
    }
    _, ok := ParseStatus("archivada")
    assert.False(t, ok)
}

func TestStatusSpellings(t *testing.T) {
    assert.Equal(t, []string{"enviada", "enviado", "submitted"}, StatusSpellings(StatusSubmitted))
    assert.Equal(t, []string{"borrador", "draft"}, StatusSpellings(StatusDraft))
    assert.True(t, ActivityStatus("enviado").IsSubmitted())
    assert.False(t, StatusDraft.IsSubmitted())
}

func TestActivityHours(t *testing.T) {
    a := Activity{StartTime: "09:00", EndTime: "10:30"}
    assert.InDelta(t, 1.5, a.Hours(), 1e-9)

    a = Activity{StartTime: "10:00", EndTime: "09:00"}
    assert.Zero(t, a.Hours())

    a = Activity{StartTime: "bad", EndTime: "09:00"}
    assert.Zero(t, a.Hours())
}

func TestActivityDateKey(t *testing.T) {
    a := Activity{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
    assert.Equal(t, "2024-01-02", a.DateKey())
}

func TestUserHelpers(t *testing.T) {
    sup := User{ID: 7, FirstName: "Ana", LastName: "Ruiz", Role: RoleSupervisor}
    sid := uint64(7)
    emp := User{ID: 9, Role: RoleEmployee, SupervisorID: &sid}

    assert.Equal(t, "Ana Ruiz", sup.FullName())
    assert.True(t, sup.Supervises(emp))
    assert.False(t, emp.Supervises(sup))
    assert.True(t, ValidRole("admin"))
    assert.False(t, ValidRole("root"))
}
