package main

import (
	"context"

	"github.com/trezcool/shule/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	std, err := cli.stdRepo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := std.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.stdRepo.UpdateStudent(ctx, std); err != nil {
		return err
	}
	return nil
}
