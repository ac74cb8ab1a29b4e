package main

import (
	"time"

	"github.com/shulehub/backend/core"
	"github.com/shulehub/backend/core/teacher"
)

// addTeacher seeds a live teacher account with the default subject set.
func (cli *commandLine) addTeacher(uname, email, pwd string) error {
	t := teacher.Teacher{
		Subjects:  core.DefaultSubjects,
		CreatedAt: time.Now().UTC(),
	}
	t.Username = core.CleanString(uname, true /* lower */)
	t.Email = core.CleanString(email, true /* lower */)
	if err := t.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.tchrRepo.CreateTeacher(t); err != nil {
		return err
	}
	return nil
}
