package model

type TimeSlot struct {
	ID          int64  `json:"id" db:"id"`
	DoctorID    int64  `json:"doctor_id" db:"doctor_id"`
	DoctorName  string `json:"doctor" db:"doctor_name"`
	Date        Date   `json:"date" db:"date"`
	StartTime   Clock  `json:"start_time" db:"start_time"`
	EndTime     Clock  `json:"end_time" db:"end_time"`
	IsAvailable bool   `json:"is_available" db:"is_available"`
	SoftDelete
	Timestamps
}

// CreateTimeSlotRequest ignores any doctor id a client sends; the slot always
// belongs to the calling doctor.
type CreateTimeSlotRequest struct {
	Date        Date  `json:"date" binding:"required"`
	StartTime   Clock `json:"start_time" binding:"required"`
	EndTime     Clock `json:"end_time" binding:"required"`
	IsAvailable *bool `json:"is_available"`
}

type UpdateTimeSlotRequest struct {
	Date        *Date  `json:"date"`
	StartTime   *Clock `json:"start_time"`
	EndTime     *Clock `json:"end_time"`
	IsAvailable *bool  `json:"is_available"`
}

func (r UpdateTimeSlotRequest) Apply(s *TimeSlot) {
	if r.Date != nil {
		s.Date = *r.Date
	}
	if r.StartTime != nil {
		s.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		s.EndTime = *r.EndTime
	}
	if r.IsAvailable != nil {
		s.IsAvailable = *r.IsAvailable
	}
}

type TimeSlotFilter struct {
	DoctorID *int64
	Date     *Date
	Scope    Scope
}
