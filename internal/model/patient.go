package model

// PatientProfile is the patient extension of an identity. The identity
// columns are joined in so the representation echoes them.
type PatientProfile struct {
	ID          int64   `json:"id" db:"id"`
	UserID      int64   `json:"user_id" db:"user_id"`
	Email       string  `json:"email" db:"email"`
	FirstName   string  `json:"first_name" db:"first_name"`
	LastName    string  `json:"last_name" db:"last_name"`
	PhoneNumber *string `json:"phone_number" db:"phone_number"`
	DateOfBirth Date    `json:"date_of_birth" db:"date_of_birth"`
	Address     string  `json:"address" db:"address"`
	SoftDelete
	Timestamps
}

func (p *PatientProfile) FullName() string {
	return (&User{FirstName: p.FirstName, LastName: p.LastName}).FullName()
}

// SetIdentity copies the joined identity columns from u.
func (p *PatientProfile) SetIdentity(u *User) {
	p.UserID = u.ID
	p.Email = u.Email
	p.FirstName = u.FirstName
	p.LastName = u.LastName
	p.PhoneNumber = u.PhoneNumber
}

type RegisterPatientRequest struct {
	IdentityFields
	DateOfBirth Date   `json:"date_of_birth" binding:"required,notfuture"`
	Address     string `json:"address"`
}

type UpdatePatientRequest struct {
	IdentityUpdate
	DateOfBirth *Date   `json:"date_of_birth" binding:"omitempty,notfuture"`
	Address     *string `json:"address"`
}

// PatientUpdate carries the profile half of a patient update.
type PatientUpdate struct {
	DateOfBirth *Date
	Address     *string
}

func (r UpdatePatientRequest) Profile() PatientUpdate {
	return PatientUpdate{DateOfBirth: r.DateOfBirth, Address: r.Address}
}

func (u PatientUpdate) Apply(p *PatientProfile) {
	if u.DateOfBirth != nil {
		p.DateOfBirth = *u.DateOfBirth
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
}
