package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/track"
)

type trackApi struct {
	svc       track.ServiceInterface
	reportSvc report.ServiceInterface
}

func registerTrackAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := trackApi{
		svc:       opts.TrackSvc,
		reportSvc: opts.ReportSvc,
	}

	ctg := g.Group("/contents/:id/complete", jwt)
	ctg.POST("", api.mark)
	ctg.DELETE("", api.unmark)

	// registered per-route; a middleware-bearing group on the exact
	// "/users/me" prefix would shadow the route set up in registerUserAPI
	g.GET("/users/me/completions", api.queryCompletions, jwt)
	g.GET("/users/me/dashboard", api.dashboard, jwt)
}

// Handlers

// mark records the content as completed. Marking twice is not an error; the
// original completion is returned untouched.
func (api *trackApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cpl, created, err := api.svc.Mark(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, cpl)
}

func (api *trackApi) unmark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Unmark(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackApi) queryCompletions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	completions, err := api.svc.UserCompletions(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying completions")
	}
	if completions == nil {
		completions = []track.Completion{}
	}
	return ctx.JSON(http.StatusOK, completions)
}

// dashboard reports the user's overall engagement.
func (api *trackApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	activity, err := api.reportSvc.UserActivity(ctx.Request().Context(), claims.Subject, claims.Username)
	if err != nil {
		return errors.Wrap(err, "getting user activity")
	}
	return ctx.JSON(http.StatusOK, activity)
}
