package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserEnforcesRole(t *testing.T) {
	u, err := NewUser("  A@B.com ", "Ann", "Lee", nil, RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, "Ann Lee", u.FullName())

	_, err = NewUser("a@b.com", "Ann", "Lee", nil, Role("staff"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Doctor")
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, r)

	_, err = ParseRole("nurse")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSoftDeleteRoundTrip(t *testing.T) {
	var p PatientProfile
	var sd SoftDeletable = &p

	now := time.Now()
	sd.MarkDeleted(now)
	assert.True(t, sd.Deleted())
	require.NotNil(t, p.DeletedAt)
	assert.Equal(t, now, *p.DeletedAt)

	sd.Restore()
	assert.False(t, sd.Deleted())
	assert.Nil(t, p.DeletedAt)
}

func TestScopeVisible(t *testing.T) {
	assert.True(t, ScopeActive.Visible(false))
	assert.False(t, ScopeActive.Visible(true))
	assert.True(t, ScopeAll.Visible(true))
	assert.Equal(t, ScopeAll, ScopeFor(true))
	assert.Equal(t, ScopeActive, ScopeFor(false))
}

func TestDateJSON(t *testing.T) {
	var body struct {
		DOB Date `json:"date_of_birth"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date_of_birth":"2000-01-01"}`), &body))
	assert.Equal(t, "2000-01-01", body.DOB.String())

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date_of_birth":"2000-01-01"}`, string(out))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"date_of_birth":"01/01/2000"}`), &body), ErrInvalidDate)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, d.Scan([]byte("2024-03-06")))
	assert.Equal(t, "2024-03-06", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", v)
}

func TestClockParsingAndOrder(t *testing.T) {
	start, err := ParseClock("09:00")
	require.NoError(t, err)
	end, err := ParseClock("10:00:00")
	require.NoError(t, err)

	assert.True(t, end.After(start))
	assert.False(t, start.After(end))
	assert.Equal(t, "10:00", end.String())

	var c Clock
	require.NoError(t, c.Scan(time.Date(0, 1, 1, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, "14:30", c.String())

	_, err = ParseClock("9am")
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCompleted, AppointmentStatusCompleted, true},
		{AppointmentStatusPending, AppointmentStatus("lost"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.ErrorIs(t, AppointmentStatusCompleted.ValidateTransition(AppointmentStatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, AppointmentStatusPending.ValidateTransition("lost"), ErrInvalidStatus)
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.False(t, AppointmentStatusConfirmed.Terminal())
}

func TestAppointmentJSONCarriesLabel(t *testing.T) {
	a := Appointment{ID: 1, Status: AppointmentStatusConfirmed, DoctorName: "Gregory House"}
	out, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "confirmed", m["status"])
	assert.Equal(t, "Confirmed", m["status_label"])
	assert.Equal(t, "Gregory House", m["doctor"])
	assert.Equal(t, false, m["is_deleted"])
}

func TestDoctorSummary(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	appts := []*Appointment{
		{ID: 1, Status: AppointmentStatusPending, AppointmentDate: day.Add(9 * time.Hour)},
		{ID: 2, Status: AppointmentStatusConfirmed, AppointmentDate: day.Add(10 * time.Hour)},
		{ID: 3, Status: AppointmentStatusConfirmed, AppointmentDate: day.AddDate(0, 0, 1)},
		{ID: 4, Status: AppointmentStatusCancelled, AppointmentDate: day.Add(11 * time.Hour)},
		{ID: 5, Status: AppointmentStatusCompleted, AppointmentDate: day.AddDate(0, 0, -1)},
	}

	s := NewDoctorSummary(appts, day)

	assert.Equal(t, StatusSummary{Pending: 1, Confirmed: 2, Cancelled: 1, Completed: 1}, s.Summary)
	assert.Equal(t, len(appts), s.Summary.Total())
	require.Len(t, s.Upcoming, 2)
	require.Len(t, s.Today, 2)
	assert.Equal(t, int64(1), s.Today[0].ID)
	assert.Equal(t, int64(2), s.Today[1].ID)
}

func TestPatientSummaryEmptyListsAreNotNil(t *testing.T) {
	s := NewPatientSummary(nil)
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":{"pending":0,"confirmed":0,"cancelled":0,"completed":0},"upcoming_appointments":[]}`, string(out))
}

func TestUpdatePartitions(t *testing.T) {
	first := "Jane"
	addr := "1 Main St"
	req := UpdatePatientRequest{
		IdentityUpdate: IdentityUpdate{FirstName: &first},
		Address:        &addr,
	}

	u := &User{FirstName: "Ann", LastName: "Lee"}
	req.UserUpdate().Apply(u)
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "Lee", u.LastName)

	p := &PatientProfile{Address: "old"}
	req.Profile().Apply(p)
	assert.Equal(t, "1 Main St", p.Address)
	assert.True(t, req.Profile().DateOfBirth == nil)
}
