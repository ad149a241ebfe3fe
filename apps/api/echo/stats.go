package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mustangstride/stride/core/study"
)

type statsApi struct {
	svc        *study.Service
	insightSvc study.InsightService
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *study.Service, insightSvc study.InsightService) {
	api := statsApi{svc: svc, insightSvc: insightSvc}

	sg := g.Group("", jwt, adminMiddleware())
	sg.GET("/stats/:section", api.sectionStats)
	sg.GET("/insight", api.insight)
}

// Handlers

func (api *statsApi) sectionStats(ctx echo.Context) error {
	store := api.svc.Store()
	stats := study.ComputeSectionStats(
		store.Users(), store.Assignments(), store.Submissions(), ctx.Param("section"),
	)
	return ctx.JSON(http.StatusOK, stats)
}

type InsightResponse struct {
	Insight string `json:"insight"`
}

// insight returns the analytics text; a failing analyzer degrades to an
// empty insight, never an error.
func (api *statsApi) insight(ctx echo.Context) error {
	var text string
	if api.insightSvc != nil {
		store := api.svc.Store()
		if s, err := api.insightSvc.Analyze(ctx.Request().Context(), store.Assignments(), store.Submissions()); err == nil {
			text = s
		}
	}
	return ctx.JSON(http.StatusOK, InsightResponse{Insight: text})
}
