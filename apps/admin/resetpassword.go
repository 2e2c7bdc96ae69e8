package main

import (
	"context"
	"strings"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

// resetPassword sets the password of the admin with the card code or email `login`.
func (cli *commandLine) resetPassword(login, pwd string) error {
	ctx := context.Background()
	login = core.CleanString(login)

	var usr user.User
	var err error
	if strings.Contains(login, "@") {
		usr, err = cli.usrRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		usr, err = cli.usrRepo.GetByCardCode(ctx, login)
	}
	if err != nil {
		return err
	}
	return cli.usrSvc.SetPassword(ctx, usr, pwd)
}
