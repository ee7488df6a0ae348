package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/track"
	"github.com/tmwangi/elimu/core/user"
)

var errCourseNotCompleted = echo.NewHTTPError(http.StatusForbidden, "course not yet completed")

type courseApi struct {
	conf         *core.Config
	svc          course.ServiceInterface
	userSvc      user.ServiceInterface
	trackSvc     track.ServiceInterface
	reportSvc    report.ServiceInterface
	certRenderer core.CertificateRenderer
	mailSvc      core.EmailService
	validate     *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := courseApi{
		conf:         opts.Conf,
		svc:          opts.CourseSvc,
		userSvc:      opts.UserSvc,
		trackSvc:     opts.TrackSvc,
		reportSvc:    opts.ReportSvc,
		certRenderer: opts.CertRenderer,
		mailSvc:      opts.MailSvc,
		validate:     opts.Validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, staffMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, staffMiddleware())
	cg.DELETE("/:id", api.destroy, adminMiddleware())
	cg.POST("/:id/enroll", api.enroll)
	cg.GET("/:id/contents", api.availableContents)
	cg.POST("/:id/contents", api.createContent, staffMiddleware())
	cg.GET("/:id/analytics", api.analytics, staffMiddleware())
	cg.GET("/:id/certificate", api.certificate)

	ctg := g.Group("/contents", jwt)
	ctg.GET("", api.availableContents) // all released contents, across courses
	ctg.GET("/:id", api.retrieveContent)
	ctg.PUT("/:id", api.updateContent, staffMiddleware())
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	// a teacher creates courses on their own behalf
	if data.TeacherID == "" {
		ctxUsr, err := getContextUser(ctx, api.userSvc)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		data.TeacherID = ctxUsr.ID
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Query(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	mbr, err := api.svc.Enroll(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *courseApi) availableContents(ctx echo.Context) error {
	contents, err := api.svc.AvailableContents(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if contents == nil {
		contents = []course.Content{}
	}
	return ctx.JSON(http.StatusOK, contents)
}

func (api *courseApi) createContent(ctx echo.Context) error {
	var data course.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt, err := api.svc.CreateContent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cnt)
}

func (api *courseApi) retrieveContent(ctx echo.Context) error {
	cnt, err := api.svc.GetContent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cnt)
}

func (api *courseApi) updateContent(ctx echo.Context) error {
	var data course.UpdateContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateContent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt, err := api.svc.UpdateContent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cnt)
}

func (api *courseApi) analytics(ctx echo.Context) error {
	stats, err := api.reportSvc.CourseAnalytics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

// certificate issues a certificate of completion once the user has completed
// all released contents of the course they are enrolled in.
func (api *courseApi) certificate(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if _, err = api.svc.GetMember(ctx.Request().Context(), ctxUsr.ID, crs.ID); err != nil {
		return err
	}

	progress, err := api.trackSvc.CourseProgress(ctx.Request().Context(), ctxUsr.ID, crs.ID)
	if err != nil {
		return errors.Wrap(err, "getting course progress")
	}
	if !progress.Done() {
		return errCourseNotCompleted
	}

	verifyURL := fmt.Sprintf("%s/certificates/verify?course=%s&user=%s", api.conf.FrontendBaseURL, crs.ID, ctxUsr.ID)
	buf, contentType, err := api.certRenderer.Render(core.CertificateData{
		StudentName:       ctxUsr.Name,
		CourseName:        crs.Name,
		CourseDescription: crs.Description,
		IssuedAt:          time.Now().UTC(),
		VerifyURL:         verifyURL,
	})
	if err != nil {
		return errors.Wrap(err, "rendering certificate")
	}

	api.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: ctxUsr.Name, Address: ctxUsr.Email}},
		Subject:      fmt.Sprintf("Your %q certificate", crs.Name),
		TemplateName: "certificate",
		TemplateData: struct{ Username, CourseName, VerifyURL string }{ctxUsr.Username, crs.Name, verifyURL},
		Attachments: []core.Attachment{{
			Content:     buf,
			ContentType: contentType,
			Filename:    "certificate.png",
		}},
	})
	return ctx.Blob(http.StatusOK, contentType, buf.Bytes())
}
