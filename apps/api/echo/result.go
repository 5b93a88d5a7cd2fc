package echoapi

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/result"
	"github.com/trezcool/gradebook/core/user"
)

const studentParam = "student"

type resultApi struct {
	userSvc   *user.Service
	resultSvc *result.Service
}

func registerResultAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	userSvc *user.Service,
	examSvc *exam.Service,
	resultSvc *result.Service,
) {
	api := resultApi{
		userSvc:   userSvc,
		resultSvc: resultSvc,
	}

	rg := g.Group("/results", jwt)
	rg.GET("", api.query)

	dg := rg.Group("/:examId", examObjectMiddleware(examSvc, "examId"))
	dg.GET("", api.retrieve)
	dg.GET("/export", api.export)
}

// contextResultsOwner returns the student whose results are requested:
// students only see their own, teachers name one with `?student=`.
func (api *resultApi) contextResultsOwner(ctx echo.Context) (user.User, error) {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context user")
	}
	if ctxUsr.IsStudent() {
		return ctxUsr, nil
	}

	uname := ctx.QueryParam(studentParam)
	if uname == "" {
		return user.User{}, core.NewFieldValidationError(studentParam, "this field is required")
	}
	usr, err := api.userSvc.GetStudent(ctx.Request().Context(), uname)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding student")
	}
	return usr, nil
}

// Handlers

func (api *resultApi) query(ctx echo.Context) error {
	usr, err := api.contextResultsOwner(ctx)
	if err != nil {
		return err
	}
	results, err := api.resultSvc.StudentResults(ctx.Request().Context(), usr.Username)
	if err != nil {
		return errors.Wrap(err, "computing results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) retrieve(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	usr, err := api.contextResultsOwner(ctx)
	if err != nil {
		return err
	}
	res, err := api.resultSvc.StudentResult(ctx.Request().Context(), usr.Username, ex.ID)
	if err != nil {
		return errors.Wrap(err, "computing result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resultApi) export(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	usr, err := api.contextResultsOwner(ctx)
	if err != nil {
		return err
	}
	export, err := api.resultSvc.Export(ctx.Request().Context(), usr.Username, ex.ID, exportFormat(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting result")
	}
	return attachment(ctx, export)
}

func attachment(ctx echo.Context, export result.Export) error {
	// non-ASCII names are sent as RFC 2231 extended parameters
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename})
	ctx.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return ctx.Blob(http.StatusOK, export.ContentType, export.Content)
}
