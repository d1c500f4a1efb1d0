package model

// DoctorProfile is the doctor extension of an identity.
type DoctorProfile struct {
	ID                 int64   `json:"id" db:"id"`
	UserID             int64   `json:"user_id" db:"user_id"`
	Email              string  `json:"email" db:"email"`
	FirstName          string  `json:"first_name" db:"first_name"`
	LastName           string  `json:"last_name" db:"last_name"`
	PhoneNumber        *string `json:"phone_number" db:"phone_number"`
	SpecializationID   *int64  `json:"specialization_id" db:"specialization_id"`
	SpecializationName *string `json:"specialization" db:"specialization_name"`
	ExperienceYears    int     `json:"experience_years" db:"experience_years"`
	Address            string  `json:"address" db:"address"`
	Availability       bool    `json:"availability" db:"availability"`
	SoftDelete
	Timestamps
}

func (d *DoctorProfile) FullName() string {
	return (&User{FirstName: d.FirstName, LastName: d.LastName}).FullName()
}

func (d *DoctorProfile) SetIdentity(u *User) {
	d.UserID = u.ID
	d.Email = u.Email
	d.FirstName = u.FirstName
	d.LastName = u.LastName
	d.PhoneNumber = u.PhoneNumber
}

type RegisterDoctorRequest struct {
	IdentityFields
	Address          string `json:"address"`
	ExperienceYears  int    `json:"experience_years" binding:"gte=0"`
	SpecializationID *int64 `json:"specialization_id" binding:"omitempty,gt=0"`
}

type UpdateDoctorRequest struct {
	IdentityUpdate
	Address          *string `json:"address"`
	ExperienceYears  *int    `json:"experience_years" binding:"omitempty,gte=0"`
	SpecializationID *int64  `json:"specialization_id" binding:"omitempty,gt=0"`
	Availability     *bool   `json:"availability"`
}

// DoctorUpdate carries the profile half of a doctor update.
type DoctorUpdate struct {
	Address          *string
	ExperienceYears  *int
	SpecializationID *int64
	Availability     *bool
}

func (r UpdateDoctorRequest) Profile() DoctorUpdate {
	return DoctorUpdate{
		Address:          r.Address,
		ExperienceYears:  r.ExperienceYears,
		SpecializationID: r.SpecializationID,
		Availability:     r.Availability,
	}
}

func (u DoctorUpdate) Apply(d *DoctorProfile) {
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.ExperienceYears != nil {
		d.ExperienceYears = *u.ExperienceYears
	}
	if u.SpecializationID != nil {
		d.SpecializationID = u.SpecializationID
	}
	if u.Availability != nil {
		d.Availability = *u.Availability
	}
}

type DoctorFilter struct {
	SpecializationID *int64
	Available        *bool
	Scope            Scope
}
