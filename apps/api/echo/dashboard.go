package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type dashboardApi struct {
	*Server
}

func registerDashboardAPI(g *echo.Group, jwt, sess echo.MiddlewareFunc, s *Server) {
	api := dashboardApi{s}

	g.GET("/admin/dashboard", api.admin, jwt, sess, gateMiddleware())
	g.GET("/professor/dashboard", api.professor, jwt, sess, gateMiddleware())
	g.GET("/student/dashboard", api.student, jwt, sess, gateMiddleware())
}

// Handlers

func (api *dashboardApi) admin(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.DashboardSvc.Admin())
}

func (api *dashboardApi) professor(ctx echo.Context) error {
	i, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.DashboardSvc.Professor(i))
}

func (api *dashboardApi) student(ctx echo.Context) error {
	i, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.DashboardSvc.Student(i))
}
