package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core"
	"github.com/espanolfacil/academy/core/identity"
	"github.com/espanolfacil/academy/core/pack"
	"github.com/espanolfacil/academy/services/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type identityApi struct {
	*Server
}

func registerIdentityAPI(g *echo.Group, jwt, sess echo.MiddlewareFunc, s *Server) {
	api := identityApi{s}

	sg := g.Group("/admin/students", jwt, sess, gateMiddleware())
	sg.GET("", api.queryStudents)
	sg.GET("/export", api.exportStudents)
	sg.PATCH("/:id/status", api.setStudentStatus)
	sg.DELETE("/:id", api.destroyStudent)

	pg := g.Group("/admin/professors", jwt, sess, gateMiddleware())
	pg.GET("", api.queryProfessors)
	pg.POST("", api.createProfessor)
	pg.DELETE("/:id", api.destroyProfessor)
	pg.PUT("/:id/packs", api.assignPacks)
}

// Handlers

func (api *identityApi) queryStudents(ctx echo.Context) error {
	var filter identity.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to identity.QueryFilter")
	}
	filter.Role = identity.RoleStudent
	return ctx.JSON(http.StatusOK, api.IdentitySvc.Filter(filter))
}

func (api *identityApi) exportStudents(ctx echo.Context) error {
	students := api.IdentitySvc.Filter(identity.QueryFilter{Role: identity.RoleStudent})

	var buf bytes.Buffer
	if err := export.WriteStudents(&buf, students); err != nil {
		return errors.Wrap(err, "exporting students")
	}
	ctx.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename(core.Today().String())),
	)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (api *identityApi) setStudentStatus(ctx echo.Context) error {
	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	id := ctx.Param("id")
	if err := api.checkRole(id, identity.RoleStudent); err != nil {
		return err
	}
	i, err := api.IdentitySvc.SetStatus(id, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting student status")
	}
	return ctx.JSON(http.StatusOK, i)
}

func (api *identityApi) destroyStudent(ctx echo.Context) error {
	if err := api.IdentitySvc.Delete(identity.RoleStudent, ctx.Param("id")); err != nil {
		return mapIdentityErr(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *identityApi) queryProfessors(ctx echo.Context) error {
	var filter identity.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to identity.QueryFilter")
	}
	filter.Role = identity.RoleProfessor
	return ctx.JSON(http.StatusOK, api.IdentitySvc.Filter(filter))
}

func (api *identityApi) createProfessor(ctx echo.Context) error {
	var data identity.NewIdentity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIdentity")
	}
	data.Role = identity.RoleProfessor

	i, err := api.IdentitySvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating professor")
	}
	return ctx.JSON(http.StatusCreated, i)
}

func (api *identityApi) destroyProfessor(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.IdentitySvc.Delete(identity.RoleProfessor, id); err != nil {
		return mapIdentityErr(err, "deleting professor")
	}
	if err := api.PackSvc.Unassign(id); err != nil {
		return errors.Wrap(err, "unassigning professor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *identityApi) assignPacks(ctx echo.Context) error {
	var data AssignPacksRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignPacksRequest")
	}

	id := ctx.Param("id")
	if err := api.checkRole(id, identity.RoleProfessor); err != nil {
		return err
	}
	packs, err := api.PackSvc.AssignProfessor(id, data.PackIDs)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.NewFieldError("pack_ids", err)
		}
		return errors.Wrap(err, "assigning packs")
	}
	if packs == nil {
		packs = []pack.Pack{}
	}
	return ctx.JSON(http.StatusOK, packs)
}

// checkRole answers 404 unless id is an identity of role.
func (api *identityApi) checkRole(id string, role identity.Role) error {
	i, err := api.IdentitySvc.GetByID(id)
	if err != nil {
		return mapIdentityErr(err, "getting identity")
	}
	if i.Role != role {
		return errHttpNotFound
	}
	return nil
}
