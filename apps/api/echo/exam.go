package echoapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/result"
)

// examApi is the teacher's exam, marks and results management.
type examApi struct {
	svc       *exam.Service
	markSvc   *mark.Service
	resultSvc *result.Service
	validate  *validator.Validate
}

func registerExamAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *exam.Service,
	markSvc *mark.Service,
	resultSvc *result.Service,
	validate *validator.Validate,
) {
	api := examApi{
		svc:       svc,
		markSvc:   markSvc,
		resultSvc: resultSvc,
		validate:  validate,
	}

	eg := g.Group("/exams", jwt, teacherMiddleware)
	eg.GET("", api.query)
	eg.POST("", api.create)

	// detail endpoints
	dg := eg.Group("/:id", examObjectMiddleware(svc, "id"))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/subjects/rename", api.renameSubject)
	dg.GET("/marks", api.marks)
	dg.PUT("/marks", api.saveMarks)
	dg.POST("/marks/import", api.importMarks)
	dg.GET("/results", api.results)
}

// Handlers

func (api *examApi) query(ctx echo.Context) error {
	exams, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ex, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examApi) update(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}

	var data exam.UpdateExam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ex, err = api.svc.Update(ctx.Request().Context(), ex.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, ex)
}

// destroy also deletes all the marks of the exam.
func (api *examApi) destroy(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ex.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) renameSubject(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}

	var data exam.RenameSubject
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameSubject")
	}
	if err = data.Validate(ctx.Request().Context(), ex.ID, api.validate, api.svc); err != nil {
		return err
	}

	ex, err = api.svc.RenameSubject(ctx.Request().Context(), ex.ID, data)
	if err != nil {
		return errors.Wrap(err, "renaming subject")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examApi) marks(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	ex, sheet, err := api.markSvc.Sheet(ctx.Request().Context(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	return ctx.JSON(http.StatusOK, MarksResponse{Exam: ex, Marks: sheet})
}

func (api *examApi) saveMarks(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}

	var data mark.SaveMarks
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveMarks")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.markSvc.Save(ctx.Request().Context(), ex.ID, data); err != nil {
		return errors.Wrap(err, "saving marks")
	}
	return api.marks(ctx)
}

// importMarks reads a CSV file from the multipart field `file` or from the request body.
func (api *examApi) importMarks(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}

	var r io.Reader = ctx.Request().Body
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := ctx.FormFile("file")
		if err != nil {
			return core.NewFieldValidationError("file", "this field is required")
		}
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	rep, err := api.markSvc.Import(ctx.Request().Context(), ex.ID, r)
	if err != nil {
		return errors.Wrap(err, "importing marks")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *examApi) results(ctx echo.Context) error {
	ex, err := contextExam(ctx)
	if err != nil {
		return err
	}
	results, err := api.resultSvc.ExamResults(ctx.Request().Context(), ex.ID)
	if err != nil {
		return errors.Wrap(err, "computing exam results")
	}
	return ctx.JSON(http.StatusOK, results)
}

type MarksResponse struct {
	Exam  exam.Exam  `json:"exam"`
	Marks mark.Sheet `json:"marks"`
}
