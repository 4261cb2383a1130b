package echoapi

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/activity"
)

type activityApi struct {
	svc      activity.Service
	logger   core.Logger
	validate *validator.Validate
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc activity.Service, logger core.Logger, validate *validator.Validate) {
	api := activityApi{
		svc:      svc,
		logger:   logger,
		validate: validate,
	}

	admin := adminMiddleware()

	ag := g.Group("/activities", jwt, admin)
	ag.GET("", api.queryAll)
	ag.POST("", api.create)

	tg := g.Group("/taxonomy", jwt, admin)
	tg.GET("", api.taxonomy)
}

// Handlers

func (api *activityApi) taxonomy(ctx echo.Context) error {
	tax := api.svc.Taxonomy(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, tax)
}

func (api *activityApi) queryAll(ctx echo.Context) error {
	acts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

// create accepts a multipart form: the activity fields plus any number of
// "files" parts. Files with unsupported content types are silently skipped.
func (api *activityApi) create(ctx echo.Context) error {
	std, err := contextStudent(ctx)
	if err != nil {
		return err
	}

	data := activity.NewActivity{
		Title:               ctx.FormValue("title"),
		Description:         ctx.FormValue("description"),
		Content:             ctx.FormValue("content"),
		AlgorithmCorrection: ctx.FormValue("algorithm_correction"),
		CodeCorrection:      ctx.FormValue("code_correction"),
		CategoryID:          ctx.FormValue("category_id"),
		LevelID:             ctx.FormValue("level_id"),
	}

	var staging activity.Staging
	if form, err := ctx.MultipartForm(); err == nil {
		for _, fh := range form.File["files"] {
			f, err := fh.Open()
			if err != nil {
				return errors.Wrapf(err, "opening upload %s", fh.Filename)
			}
			content, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return errors.Wrapf(err, "reading upload %s", fh.Filename)
			}
			staging.Offer(fh.Filename, fh.Header.Get("Content-Type"), content)
		}
	}

	res, err := api.svc.Submit(ctx.Request().Context(), std, data, staging.Files())
	if err != nil {
		switch errors.Cause(err) {
		case activity.ErrSubmissionInFlight:
			return errSubmissionInFlight
		default:
			if _, ok := errors.Cause(err).(validator.ValidationErrors); ok {
				return err
			}
			api.logRemoteFailure(err)
			return echo.NewHTTPError(http.StatusBadGateway, core.ErrorMessage(err))
		}
	}

	return ctx.JSON(http.StatusCreated, res)
}

// logRemoteFailure keeps driver internals out of responses. Postgres
// code/detail/hint are logged here and nowhere else.
func (api *activityApi) logRemoteFailure(err error) {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		api.logger.Error(
			"activity submission: database error",
			err,
			map[string]interface{}{
				"code":   string(pqErr.Code),
				"detail": pqErr.Detail,
				"hint":   pqErr.Hint,
			},
		)
		return
	}
	api.logger.Error("activity submission failed", err)
}
