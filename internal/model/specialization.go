package model

type Specialization struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	DoctorCount int     `json:"doctor_count" db:"doctor_count"`
	SoftDelete
	Timestamps
}

type CreateSpecializationRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

type UpdateSpecializationRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

func (r UpdateSpecializationRequest) Apply(s *Specialization) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Description != nil {
		s.Description = r.Description
	}
}
