package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/espanolfacil/academy/core/pack"
)

type packApi struct {
	svc *pack.Service
}

func registerPackAPI(g *echo.Group, jwt, sess echo.MiddlewareFunc, s *Server) {
	api := packApi{svc: s.PackSvc}

	// landing page
	g.GET("/packs", api.listPublic)

	ag := g.Group("/admin/packs", jwt, sess, gateMiddleware())
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *packApi) listPublic(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ListPublic())
}

func (api *packApi) query(ctx echo.Context) error {
	var filter pack.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to pack.QueryFilter")
	}
	return ctx.JSON(http.StatusOK, api.svc.Query(filter))
}

func (api *packApi) create(ctx echo.Context) error {
	var data pack.NewPack
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPack")
	}
	p, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating pack")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *packApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting pack")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *packApi) update(ctx echo.Context) error {
	var data pack.NewPack
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPack")
	}
	p, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating pack")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *packApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.GetByID(id); err != nil {
		return errors.Wrap(err, "getting pack")
	}
	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting pack")
	}
	return ctx.NoContent(http.StatusNoContent)
}
