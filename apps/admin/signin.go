package main

import (
	"context"
	"fmt"

	"github.com/espanolfacil/academy/core/session"
)

// signIn opens a session for contextID, as the sign-in form would.
func (cli *commandLine) signIn(ctx context.Context, contextID, email, pwd string) error {
	m := session.NewManager(cli.idSvc, cli.sessions.Record(contextID), cli.logger, 0)
	m.Restore(ctx)
	if err := m.SignIn(ctx, email, pwd); err != nil {
		return err
	}
	i, _ := m.Current()
	_, _ = fmt.Fprintf(cli.out, "%s (%s %s) signed in on %s\n", i.Email, i.Role, i.Code, contextID)
	return nil
}

func (cli *commandLine) signOut(ctx context.Context, contextID string) error {
	if err := cli.sessions.Record(contextID).Delete(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%s signed out\n", contextID)
	return nil
}
