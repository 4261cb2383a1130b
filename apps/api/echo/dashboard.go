package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/activity"
	"github.com/trezcool/shule/core/student"
)

type dashboardApi struct {
	studentSvc  student.Service
	activitySvc activity.Service
	logger      core.Logger
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, studentSvc student.Service, activitySvc activity.Service, logger core.Logger) {
	api := dashboardApi{
		studentSvc:  studentSvc,
		activitySvc: activitySvc,
		logger:      logger,
	}

	dg := g.Group("/dashboard", jwt, adminMiddleware())
	dg.GET("/stats", api.stats)
}

// StatsResponse carries aggregate counts. A nil count means that one
// query failed; the others are still reported.
type StatsResponse struct {
	Students   *int `json:"students"`
	Activities *int `json:"activities"`
	Assets     *int `json:"assets"`
}

func (api *dashboardApi) stats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var (
		res StatsResponse
		wg  sync.WaitGroup
	)
	count := func(dst **int, name string, fn func() (int, error)) {
		defer wg.Done()
		n, err := fn()
		if err != nil {
			api.logger.Error("dashboard: counting "+name, "error", err)
			return
		}
		*dst = &n
	}

	wg.Add(3)
	go count(&res.Students, "students", func() (int, error) { return api.studentSvc.Count(reqCtx) })
	go count(&res.Activities, "activities", func() (int, error) { return api.activitySvc.CountActivities(reqCtx) })
	go count(&res.Assets, "assets", func() (int, error) { return api.activitySvc.CountAssets(reqCtx) })
	wg.Wait()

	return ctx.JSON(http.StatusOK, res)
}
