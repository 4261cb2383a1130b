package main

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

// addStaff promotes an existing account to admin or creates a new one.
func (cli *commandLine) addStaff(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	std, err := cli.stdRepo.GetStudentByEmail(ctx, email)
	if err != nil {
		if err != student.ErrNotFound {
			return err
		}
		std = student.Student{Email: email}
	}
	if name != "" {
		std.FullName = null.StringFrom(name)
	}
	std.IsAdmin = true
	if err := std.SetPassword(pwd); err != nil {
		return err
	}

	if std.ID == "" {
		_, err = cli.stdRepo.CreateStudent(ctx, std)
	} else {
		_, err = cli.stdRepo.UpdateStudent(ctx, std)
	}
	return err
}
