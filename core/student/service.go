package student

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context, ordering ...core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		CountStudents(ctx context.Context) (int, error)
	}

	Service interface {
		CheckEmailUniqueness(email string, exclStudents ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByEmail(ctx context.Context, email string) (Student, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ConfirmPasswordReset(ctx context.Context, rp ResetStudentPassword) (Student, error)
		ResetPassword(ctx context.Context, std Student, pwd string) (Student, error)
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) CheckEmailUniqueness(email string, exclStudents ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclStudents...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		Email:     ns.Email,
		IsAdmin:   ns.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	std.FullName.SetValid(ns.FullName)
	if ns.FullName == "" {
		std.FullName.Valid = false
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	svc.sendWelcomeMail(std)
	return std, nil
}

func (svc *service) sendWelcomeMail(std Student) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: std.Name(), Address: std.Email}},
		Subject:      "Welcome to Shule",
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{Name: std.Name()},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

// RequestPasswordReset emails a reset link to the account's address.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	std, err := svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	token, err := MakeToken(std)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	svc.sendPasswordResetMail(std, token)
	return nil
}

func (svc *service) sendPasswordResetMail(std Student, token string) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: std.Name(), Address: std.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{Name: std.Name(), UID: EncodeUID(std), Token: token},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) ConfirmPasswordReset(ctx context.Context, rp ResetStudentPassword) (Student, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return Student{}, core.NewValidationError(errInvalidToken)
	}
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Student{}, core.NewValidationError(errInvalidToken)
		}
		return Student{}, err
	}
	if err := verifyToken(std, rp.Token); err != nil {
		return Student{}, core.NewValidationError(err)
	}
	return svc.ResetPassword(ctx, std, rp.Password)
}

func (svc *service) ResetPassword(ctx context.Context, std Student, pwd string) (Student, error) {
	if err := std.SetPassword(pwd); err != nil {
		return Student{}, err
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}
