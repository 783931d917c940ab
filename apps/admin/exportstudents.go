package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/services/export"
)

func (cli *commandLine) exportStudents(path string, status identity.Status) error {
	if path == "" {
		path = export.Filename(core.Today().String())
	}
	students := cli.idSvc.Filter(identity.QueryFilter{Role: identity.RoleStudent, Status: status})

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := export.WriteStudents(f, students); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	_, _ = fmt.Fprintf(cli.out, "%d students written to %s\n", len(students), path)
	return nil
}
