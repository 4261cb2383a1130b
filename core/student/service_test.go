package student_test

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	emailsvc "github.com/trezcool/shule/services/email"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	testutil "github.com/trezcool/shule/tests"
)

func setup(t *testing.T) (student.Service, *dummydb.StudentRepository) {
	t.Helper()

	conf := core.NewConfig()
	student.InitTokenGenerator(conf)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewStudentRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	return student.NewService(repo, mailSvc), repo
}

func Test_service_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	ns := student.NewStudent{
		Email:           "awe@test.cd",
		FullName:        "Awe Mukena",
		Password:        "LolC@t123",
		PasswordConfirm: "LolC@t123",
	}
	std, err := svc.Create(ctx, ns)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if std.ID == "" {
		t.Fatal("student not persisted")
	}
	if std.IsAdmin {
		t.Error("signup must not grant admin")
	}
	if err := std.CheckPassword("LolC@t123"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// welcome email
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d, want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != std.Email {
		t.Errorf("To = %v, want %s", msg.To[0], std.Email)
	}
	if !strings.Contains(msg.TextContent, "Awe Mukena") {
		t.Error("welcome email does not greet the student by name")
	}
}

func Test_NewStudent_Validate_uniqueEmail(t *testing.T) {
	svc, repo := setup(t)
	validate, _ := core.NewValidator()

	testutil.CreateStudent(t, repo, "awe@test.cd", "Awe", "", false)

	ns := student.NewStudent{
		Email:           "AWE@test.cd", // cleaned to lowercase before the check
		Password:        "LolC@t123",
		PasswordConfirm: "LolC@t123",
	}
	err := ns.Validate(validate, svc)
	if err == nil {
		t.Fatal("Validate() did not fail")
	}
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("error = %T, want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "email" {
		t.Errorf("Fields = %v, want one error on email", vErr.Fields)
	}
}

func Test_service_RequestPasswordReset(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, repo, "awe@test.cd", "Awe", "oldPwd", false)

	if err := svc.RequestPasswordReset(ctx, "lol@test.cd"); err != student.ErrNotFound {
		t.Errorf("RequestPasswordReset() error = %v, want ErrNotFound", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Fatalf("len(SentMessages) = %d, want 0", len(emailsvc.SentMessages))
	}

	if err := svc.RequestPasswordReset(ctx, std.Email); err != nil {
		t.Fatalf("RequestPasswordReset() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d, want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != std.Email {
		t.Errorf("To = %v, want %s", msg.To[0], std.Email)
	}
	pathRegex := regexp.MustCompile("/password-reset/.+/.+")
	if !pathRegex.MatchString(msg.TextContent) {
		t.Error("text content does not contain a reset link")
	}
	if !pathRegex.MatchString(msg.HTMLContent) {
		t.Error("HTML content does not contain a reset link")
	}
}

func Test_service_ConfirmPasswordReset(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, repo, "awe@test.cd", "Awe", "oldPwd", false)
	validUID := student.EncodeUID(std)
	validToken, err := student.MakeToken(std)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := core.NewConfig().PasswordResetTimeoutDelta + (24 * time.Hour)
	student.NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := student.MakeToken(std)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	student.NowFunc = time.Now // reset

	newPwd := student.ResetStudentPassword{
		Token:           validToken,
		UID:             validUID,
		Password:        "NewC@t123",
		PasswordConfirm: "NewC@t123",
	}

	t.Run("bad uid", func(t *testing.T) {
		rp := newPwd
		rp.UID = "@@@not-base64@@@"
		if _, err := svc.ConfirmPasswordReset(ctx, rp); err == nil {
			t.Error("ConfirmPasswordReset() did not fail")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		rp := newPwd
		rp.UID = student.EncodeUID(student.Student{ID: "ghost"})
		if _, err := svc.ConfirmPasswordReset(ctx, rp); err == nil {
			t.Error("ConfirmPasswordReset() did not fail")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		rp := newPwd
		rp.Token = expiredToken
		if _, err := svc.ConfirmPasswordReset(ctx, rp); err == nil {
			t.Error("ConfirmPasswordReset() did not fail")
		}
	})

	t.Run("valid token", func(t *testing.T) {
		refreshed, err := svc.ConfirmPasswordReset(ctx, newPwd)
		if err != nil {
			t.Fatalf("ConfirmPasswordReset() failed: %v", err)
		}
		if bytes.Equal(refreshed.PasswordHash, std.PasswordHash) {
			t.Error("password was not updated")
		}
		if err := refreshed.CheckPassword("NewC@t123"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})

	t.Run("token single use", func(t *testing.T) {
		// bound to the old password hash, so it no longer verifies
		if _, err := svc.ConfirmPasswordReset(ctx, newPwd); err == nil {
			t.Error("ConfirmPasswordReset() did not fail on reuse")
		}
	})
}

func Test_service_Count(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	if n, err := svc.Count(ctx); err != nil || n != 0 {
		t.Errorf("Count() = %d, %v; want 0, nil", n, err)
	}
	testutil.CreateStudent(t, repo, "a@test.cd", "", "", false)
	testutil.CreateStudent(t, repo, "b@test.cd", "", "", true)
	if n, err := svc.Count(ctx); err != nil || n != 2 {
		t.Errorf("Count() = %d, %v; want 2, nil", n, err)
	}
}
