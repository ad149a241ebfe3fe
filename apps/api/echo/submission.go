package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
)

type submissionApi struct {
	svc *study.Service
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *study.Service) {
	api := submissionApi{svc: svc}

	sg := g.Group("", jwt, studentMiddleware())
	sg.POST("/submissions", api.create)
	sg.GET("/me/pending", api.pending)
	sg.GET("/me/completed", api.completed)
}

// Handlers

// create accepts either a JSON body with files already encoded as data URLs,
// or a multipart form whose raw file parts are encoded server-side.
func (api *submissionApi) create(ctx echo.Context) error {
	var data study.NewSubmission
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var err error
		if data, err = bindMultipartSubmission(ctx); err != nil {
			return err
		}
	} else if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.SubmitAssignment(usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

// bindMultipartSubmission reads the "files" parts of a multipart form into
// encoded SubmissionFiles. One unreadable part rejects the whole submission.
func bindMultipartSubmission(ctx echo.Context) (study.NewSubmission, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return study.NewSubmission{}, errors.Wrap(err, "parsing multipart form")
	}

	sources := make([]study.FileSource, 0, len(form.File["files"]))
	for _, hdr := range form.File["files"] {
		f, err := hdr.Open()
		if err != nil {
			return study.NewSubmission{}, errors.Wrapf(err, "opening %s", hdr.Filename)
		}
		defer f.Close()
		sources = append(sources, study.FileSource{
			Name: hdr.Filename,
			Type: hdr.Header.Get(echo.HeaderContentType),
			R:    f,
		})
	}
	files, err := study.ReadFiles(sources)
	if err != nil {
		return study.NewSubmission{}, core.NewValidationError(err, core.FieldError{Field: "files", Error: err.Error()})
	}

	return study.NewSubmission{
		AssignmentID: ctx.FormValue("assignmentId"),
		TextResponse: ctx.FormValue("textResponse"),
		Files:        files,
	}, nil
}

func (api *submissionApi) pending(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	store := api.svc.Store()
	return ctx.JSON(http.StatusOK, study.PendingFor(usr, store.Assignments(), store.Submissions()))
}

func (api *submissionApi) completed(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	store := api.svc.Store()
	return ctx.JSON(http.StatusOK, study.CompletedFor(usr, store.Assignments(), store.Submissions()))
}
