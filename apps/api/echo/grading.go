package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/gradebook/core/grading"
)

type GradingResponse struct {
	Grades          []grading.GradeBand          `json:"grades"`
	Classifications []grading.ClassificationBand `json:"classifications"`
}

// registerGradingAPI exposes the grading and classification tables (public).
func registerGradingAPI(g *echo.Group) {
	g.GET("/grading", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, GradingResponse{
			Grades:          grading.GradingTable(),
			Classifications: grading.ClassificationTable(),
		})
	})
}
