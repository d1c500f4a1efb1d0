// Package memory holds in-process repository implementations. They back the
// service and router tests and mirror the SQL semantics of the postgres package.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

// Store is one in-memory database shared by all repositories it hands out,
// so joins such as doctor names and doctor counts stay consistent.
type Store struct {
	mu       sync.RWMutex
	seq      map[string]int64
	users    map[int64]*model.User
	patients map[int64]*model.PatientProfile
	doctors  map[int64]*model.DoctorProfile
	specs    map[int64]*model.Specialization
	slots    map[int64]*model.TimeSlot
	appts    map[int64]*model.Appointment
	outbox   []*model.OutboxEvent
	audit    []*model.AuditLog

	// FailNext makes the next write return the error, for rollback tests.
	FailNext error
}

func NewStore() *Store {
	return &Store{
		seq:      map[string]int64{},
		users:    map[int64]*model.User{},
		patients: map[int64]*model.PatientProfile{},
		doctors:  map[int64]*model.DoctorProfile{},
		specs:    map[int64]*model.Specialization{},
		slots:    map[int64]*model.TimeSlot{},
		appts:    map[int64]*model.Appointment{},
	}
}

func (s *Store) Users() repository.UserRepository                     { return &userRepo{s} }
func (s *Store) Patients() repository.PatientRepository               { return &patientRepo{s} }
func (s *Store) Doctors() repository.DoctorRepository                 { return &doctorRepo{s} }
func (s *Store) Specializations() repository.SpecializationRepository { return &specializationRepo{s} }
func (s *Store) TimeSlots() repository.TimeSlotRepository             { return &timeSlotRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository       { return &appointmentRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository                  { return &outboxRepo{s} }
func (s *Store) Audit() repository.AuditRepository                    { return &auditRepo{s} }

// OutboxEvents returns a snapshot of recorded events.
func (s *Store) OutboxEvents() []*model.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.OutboxEvent, len(s.outbox))
	for i, e := range s.outbox {
		cp := *e
		out[i] = &cp
	}
	return out
}

// AuditLogs returns a snapshot of recorded audit entries.
func (s *Store) AuditLogs() []*model.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.AuditLog, len(s.audit))
	for i, l := range s.audit {
		cp := *l
		out[i] = &cp
	}
	return out
}

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func now() time.Time {
	return time.Now().UTC()
}

// markDeleted hides a live row; a row that is already deleted is not found.
func markDeleted(row model.SoftDeletable) error {
	if row.Deleted() {
		return repository.ErrNotFound
	}
	row.MarkDeleted(now())
	return nil
}

// markRestored brings back a deleted row; a live row is not found.
func markRestored(row model.SoftDeletable) error {
	if !row.Deleted() {
		return repository.ErrNotFound
	}
	row.Restore()
	return nil
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) emailTaken(email string, excludeUserID int64) bool {
	email = model.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeUserID {
			return true
		}
	}
	return false
}

func (s *Store) insertUser(user *model.User) error {
	if s.emailTaken(user.Email, 0) {
		return repository.ErrDuplicateEmail
	}
	user.ID = s.next("users")
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// updateUser validates before mutating so a failed update leaves no trace.
func (s *Store) updateUser(userID int64, u model.UserUpdate) error {
	user, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Email != nil && s.emailTaken(*u.Email, userID) {
		return repository.ErrDuplicateEmail
	}
	if u.Empty() {
		return nil
	}
	u.Apply(user)
	user.UpdatedAt = now()
	return nil
}

func (s *Store) fullName(userID int64) string {
	if u, ok := s.users[userID]; ok {
		return u.FullName()
	}
	return ""
}

func (s *Store) doctorName(doctorID int64) string {
	if d, ok := s.doctors[doctorID]; ok {
		return s.fullName(d.UserID)
	}
	return ""
}

func (s *Store) patientName(patientID int64) string {
	if p, ok := s.patients[patientID]; ok {
		return s.fullName(p.UserID)
	}
	return ""
}
