package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core/study"
)

type userApi struct {
	svc *study.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *study.Service) {
	api := userApi{svc: svc}

	// state snapshot for any authed user
	g.GET("/state", api.state, jwt)

	// participant administration
	ug := g.Group("/users", jwt, adminMiddleware())
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.PATCH("/:id", api.update)
	ug.DELETE("/:id", api.destroy)
	ug.PUT("/:id/password", api.resetPassword)
}

// StateResponse is the read-only snapshot of the whole store.
type StateResponse struct {
	User        *study.User        `json:"user"`
	Users       []study.User       `json:"users"`
	Assignments []study.Assignment `json:"assignments"`
	Submissions []study.Submission `json:"submissions"`
}

// Handlers

func (api *userApi) state(ctx echo.Context) error {
	store := api.svc.Store()
	resp := StateResponse{
		Users:       store.Users(),
		Assignments: store.Assignments(),
		Submissions: store.Submissions(),
	}
	if usr, ok := store.SessionUser(); ok {
		resp.User = &usr
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Store().Users())
}

func (api *userApi) create(ctx echo.Context) error {
	var data study.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.RegisterUser(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	var data study.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	usr, err := api.svc.ModifyUser(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	api.svc.RemoveUser(ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

type PasswordResetRequest struct {
	Password string `json:"password"`
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := api.svc.ResetPassword(ctx.Param("id"), data.Password); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
