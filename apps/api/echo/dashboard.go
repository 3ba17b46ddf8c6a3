package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/progressiveschool/progressive/core/bulletin"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
)

const recentMarksLimit = 5

type dashboardApi struct {
	deps ServerDeps
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := dashboardApi{deps: deps}

	dg := g.Group("/dashboard", jwt)
	dg.GET("", api.dashboard)
	dg.GET("/stats", api.stats)
}

type dashboardResponse struct {
	Role          string                  `json:"role"`
	Counts        *dashboardCounts        `json:"counts,omitempty"`
	Stats         result.Stats            `json:"stats"`
	RecentMarks   []result.Row            `json:"recent_marks,omitempty"`
	Assignments   []school.AssignmentRow  `json:"assignments,omitempty"`
	Announcements []bulletin.Announcement `json:"announcements"`
	Events        []bulletin.Event        `json:"events"`
}

type dashboardCounts struct {
	school.Counts
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Marks    int64 `json:"marks"`
}

// dashboard assembles the role-specific landing payload: entity counts for
// admins, own assignments for teachers, own stats for students, plus the
// visible bulletin for everyone.
func (api *dashboardApi) dashboard(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	resp := dashboardResponse{Role: actor.Role}

	resp.Stats, err = api.deps.ResultSvc.Stats(reqCtx, actor, result.QueryFilter{}, result.DefaultTopN)
	if err != nil {
		return errors.Wrap(err, "aggregating stats")
	}

	if actor.IsAdmin() {
		counts, err := api.deps.SchoolSvc.Counts(reqCtx)
		if err != nil {
			return errors.Wrap(err, "counting catalog entities")
		}
		students, err := api.deps.UserSvc.CountByRole(reqCtx, user.RoleStudent)
		if err != nil {
			return errors.Wrap(err, "counting students")
		}
		teachers, err := api.deps.UserSvc.CountByRole(reqCtx, user.RoleTeacher)
		if err != nil {
			return errors.Wrap(err, "counting teachers")
		}
		marks, err := api.deps.ResultSvc.Count(reqCtx)
		if err != nil {
			return errors.Wrap(err, "counting marks")
		}
		resp.Counts = &dashboardCounts{
			Counts:   counts,
			Students: students,
			Teachers: teachers,
			Marks:    marks,
		}
	}

	if actor.IsTeacher() {
		resp.Assignments, err = api.deps.SchoolSvc.QueryAssignments(reqCtx, school.AssignmentFilter{TeacherID: actor.ID})
		if err != nil {
			return errors.Wrap(err, "querying assignments")
		}
	}

	if actor.IsStudent() {
		resp.RecentMarks, err = api.deps.ResultSvc.Query(reqCtx, actor, result.QueryFilter{Limit: recentMarksLimit})
		if err != nil {
			return errors.Wrap(err, "querying recent marks")
		}
	}

	resp.Announcements, err = api.deps.BulletinSvc.VisibleAnnouncements(reqCtx, actor)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if resp.Announcements == nil {
		resp.Announcements = []bulletin.Announcement{}
	}
	resp.Events, err = api.deps.BulletinSvc.UpcomingEvents(reqCtx, actor)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if resp.Events == nil {
		resp.Events = []bulletin.Event{}
	}

	return ctx.JSON(http.StatusOK, resp)
}

// stats aggregates the actor-visible results matching the bound filter.
func (api *dashboardApi) stats(ctx echo.Context) error {
	filter := new(result.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, result.Stats{})
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	stats, err := api.deps.ResultSvc.Stats(ctx.Request().Context(), actor, *filter, result.DefaultTopN)
	if err != nil {
		return errors.Wrap(err, "aggregating stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
