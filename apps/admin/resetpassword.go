package main

import (
	"github.com/shulehub/backend/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	std, err := cli.stdRepo.GetStudentByUsername(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := std.SetPassword(pwd); err != nil {
		return err
	}
	return cli.stdRepo.UpdatePassword(std.ID, std.PasswordHash)
}
