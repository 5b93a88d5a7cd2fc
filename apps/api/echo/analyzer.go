package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/result"
)

// analyzerApi runs what-if simulations. Nothing is stored.
type analyzerApi struct {
	resultSvc *result.Service
}

func registerAnalyzerAPI(g *echo.Group, jwt echo.MiddlewareFunc, resultSvc *result.Service) {
	api := analyzerApi{resultSvc: resultSvc}

	ag := g.Group("/analyzer", jwt)
	ag.POST("", api.analyze)
	ag.POST("/export", api.export)
}

func (api *analyzerApi) analyze(ctx echo.Context) error {
	var sim grading.Simulation
	if err := ctx.Bind(&sim); err != nil {
		return errors.Wrap(err, "binding to Simulation")
	}
	res, err := api.resultSvc.Analyze(sim)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *analyzerApi) export(ctx echo.Context) error {
	var sim grading.Simulation
	if err := ctx.Bind(&sim); err != nil {
		return errors.Wrap(err, "binding to Simulation")
	}
	export, err := api.resultSvc.ExportAnalysis(sim, exportFormat(ctx))
	if err != nil {
		return err
	}
	return attachment(ctx, export)
}
