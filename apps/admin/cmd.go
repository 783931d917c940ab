package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	idSvc    *identity.Service
	sessions session.Backend
	logger   core.Logger
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  signin -context ID -email EMAIL - open a session for a browser context")
	_, _ = fmt.Fprintln(cli.out, "  signout -context ID - delete the session record of a browser context")
	_, _ = fmt.Fprintln(cli.out, "  exportstudents [-out FILE] [-status active|inactive] - write the students spreadsheet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	signInCmd := flag.NewFlagSet("signin", flag.ExitOnError)
	signInContext := signInCmd.String("context", "", "The browser context id.")
	signInEmail := signInCmd.String("email", "", "The account's email. The password will be prompted next.")

	signOutCmd := flag.NewFlagSet("signout", flag.ExitOnError)
	signOutContext := signOutCmd.String("context", "", "The browser context id.")

	exportCmd := flag.NewFlagSet("exportstudents", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "The file to write. Defaults to students-YYYY-MM-DD.xlsx.")
	exportStatus := exportCmd.String("status", "", "Only export active or inactive students.")

	switch args[1] {
	case "signin":
		if err := signInCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *signInContext == "" || *signInEmail == "" {
			signInCmd.Usage()
			return errHelp
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			signInCmd.Usage()
			return errHelp
		}
		return cli.signIn(ctx, *signInContext, *signInEmail, string(pwd))

	case "signout":
		if err := signOutCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *signOutContext == "" {
			signOutCmd.Usage()
			return errHelp
		}
		return cli.signOut(ctx, *signOutContext)

	case "exportstudents":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		status := identity.Status(*exportStatus)
		if status != "" && !status.Valid() {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportStudents(*exportOut, status)

	default:
		cli.printUsage()
		return errHelp
	}
}
