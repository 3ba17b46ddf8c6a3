package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/progressiveschool/progressive/core/bulletin"
)

type bulletinApi struct {
	deps ServerDeps
}

func registerBulletinAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := bulletinApi{deps: deps}

	bg := g.Group("/bulletin", jwt)
	admin := adminMiddleware()

	ag := bg.Group("/announcements")
	ag.GET("", api.queryAnnouncements)
	ag.POST("", api.createAnnouncement, admin)
	ag.PUT("/:id", api.updateAnnouncement, admin)
	ag.DELETE("/:id", api.destroyAnnouncement, admin)

	eg := bg.Group("/events")
	eg.GET("", api.queryEvents)
	eg.POST("", api.createEvent, admin)
	eg.PUT("/:id", api.updateEvent, admin)
	eg.DELETE("/:id", api.destroyEvent, admin)
}

func (api *bulletinApi) queryAnnouncements(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	anns, err := api.deps.BulletinSvc.VisibleAnnouncements(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if anns == nil {
		anns = []bulletin.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *bulletinApi) createAnnouncement(ctx echo.Context) error {
	var data bulletin.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ann, err := api.deps.BulletinSvc.CreateAnnouncement(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *bulletinApi) updateAnnouncement(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data bulletin.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	ann, err := api.deps.BulletinSvc.UpdateAnnouncement(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating announcement")
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *bulletinApi) destroyAnnouncement(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.BulletinSvc.DeleteAnnouncements(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *bulletinApi) queryEvents(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	evts, err := api.deps.BulletinSvc.UpcomingEvents(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if evts == nil {
		evts = []bulletin.Event{}
	}
	return ctx.JSON(http.StatusOK, evts)
}

func (api *bulletinApi) createEvent(ctx echo.Context) error {
	var data bulletin.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	evt, err := api.deps.BulletinSvc.CreateEvent(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *bulletinApi) updateEvent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data bulletin.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	evt, err := api.deps.BulletinSvc.UpdateEvent(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *bulletinApi) destroyEvent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.BulletinSvc.DeleteEvents(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
