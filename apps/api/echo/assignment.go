package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core/study"
)

type assignmentApi struct {
	svc *study.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *study.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments", jwt)

	// authoring endpoints
	tg := ag.Group("", teacherMiddleware())
	tg.POST("", api.create)
	tg.PATCH("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.GET("/:id/submissions", api.querySubmissions)

	// registered after the teacher sub-group: creating that sub-group makes
	// echo install a catch-all on the same path, which would otherwise
	// overwrite this GET route
	ag.GET("", api.query)
}

// Handlers

// query returns assignments scoped to the caller: teachers see what they
// authored, students their section, admins everything.
func (api *assignmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	assignments := api.svc.Store().Assignments()
	switch {
	case usr.IsTeacher():
		assignments = study.AssignmentsBy(assignments, usr.ID)
	case usr.IsStudent():
		scoped := make([]study.Assignment, 0, len(assignments))
		for _, agn := range assignments {
			if agn.Section == usr.Section {
				scoped = append(scoped, agn)
			}
		}
		assignments = scoped
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data study.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	agn, err := api.svc.PostAssignment(usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, agn)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	var data study.AssignmentUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignmentUpdate")
	}

	agn, err := api.svc.ModifyAssignment(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, agn)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	api.svc.RetractAssignment(ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	subs := study.SubmissionsFor(api.svc.Store().Submissions(), ctx.Param("id"))
	return ctx.JSON(http.StatusOK, subs)
}
