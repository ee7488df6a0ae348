package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/comment"
	"github.com/tmwangi/elimu/core/course"
)

type commentApi struct {
	svc       comment.ServiceInterface
	courseSvc course.ServiceInterface
	validate  *validator.Validate
}

func registerCommentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := commentApi{
		svc:       opts.CommentSvc,
		courseSvc: opts.CourseSvc,
		validate:  opts.Validate,
	}

	ctg := g.Group("/contents/:id/comments", jwt)
	ctg.POST("", api.submit)
	ctg.GET("", api.queryApproved)

	cg := g.Group("/comments", jwt)
	cg.GET("/pending", api.queryPending, adminMiddleware())
	cg.PUT("/:id/approve", api.approve, adminMiddleware())
}

// Handlers

// submit records a new comment on a content unit. Only enrolled members of the
// content's course may comment; comments await moderation before going public.
func (api *commentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data comment.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	data.ContentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt, err := api.courseSvc.GetContent(ctx.Request().Context(), data.ContentID)
	if err != nil {
		return err
	}
	mbr, err := api.courseSvc.GetMember(ctx.Request().Context(), claims.Subject, cnt.CourseID)
	if err != nil {
		return err
	}

	cmt, err := api.svc.Submit(ctx.Request().Context(), mbr.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting comment")
	}
	return ctx.JSON(http.StatusCreated, cmt)
}

func (api *commentApi) queryApproved(ctx echo.Context) error {
	cnt, err := api.courseSvc.GetContent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	comments, err := api.svc.Approved(ctx.Request().Context(), cnt.ID)
	if err != nil {
		return errors.Wrap(err, "querying approved comments")
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *commentApi) queryPending(ctx echo.Context) error {
	comments, err := api.svc.Pending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending comments")
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

// approve is idempotent; approving an already-approved comment returns it
// unchanged, with already_approved flagging the repeat.
func (api *commentApi) approve(ctx echo.Context) error {
	cmt, wasApproved, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ApproveResponse{Comment: cmt, AlreadyApproved: wasApproved})
}

type ApproveResponse struct {
	comment.Comment
	AlreadyApproved bool `json:"already_approved"`
}
