package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core/user"
)

// addUser adds an admin to an existing gym.
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()

	g, err := cli.gymRepo.GetByID(ctx, nu.GymID)
	if err != nil {
		return err
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	fmt.Fprintf(cli.out, "added %s (%s) to %s, card code %s\n", usr.Name, usr.Role, g.Name, usr.CardCode)
	return nil
}
