package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

type Student struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	FullName     null.String `json:"full_name"`
	IsAdmin      bool        `json:"is_admin"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// Name returns the display name, falling back to the email address.
func (s *Student) Name() string {
	if s.FullName.Valid && s.FullName.String != "" {
		return s.FullName.String
	}
	return s.Email
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	IsAdmin         bool   `json:"-"` // only settable in code (admin CLI)
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc Service) error {
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.FullName = core.CleanString(ns.FullName)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ns.Email)
}

// ResetStudentPassword contains information needed to reset a Student's
// password via an emailed token.
type ResetStudentPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetStudentPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}
