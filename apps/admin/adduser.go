package main

import (
	"context"
	"fmt"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, name, email, pwd string, isTeacher bool) error {
	role := user.RoleStudent
	if isTeacher {
		role = user.RoleTeacher
	}
	usr, err := cli.usrSvc.Save(context.Background(), user.User{
		Username: core.CleanString(uname, true /* lower */),
		Name:     core.CleanString(name),
		Email:    core.CleanString(email, true /* lower */),
		Role:     role,
	}, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %q saved\n", usr.Role, usr.Username)
	return nil
}
