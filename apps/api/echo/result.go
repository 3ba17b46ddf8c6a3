package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/progressiveschool/progressive/core/result"
)

type resultApi struct {
	deps ServerDeps
}

func registerResultAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := resultApi{deps: deps}

	rg := g.Group("/results", jwt)

	rg.GET("", api.query)
	rg.GET("/view", api.view)
	rg.GET("/export/pdf", api.exportPDF)
	rg.GET("/export/xlsx", api.exportXLSX)
	rg.GET("/report-card/:id", api.reportCard)

	staff := staffMiddleware()
	rg.POST("", api.record, staff)
	rg.POST("/batch", api.recordBatch, staff)
	rg.DELETE("/:id", api.destroy, staff)
}

// Handlers

func (api *resultApi) record(ctx echo.Context) error {
	var data result.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	mrk, err := api.deps.ResultSvc.Record(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "recording mark")
	}
	return ctx.JSON(http.StatusCreated, mrk)
}

func (api *resultApi) recordBatch(ctx echo.Context) error {
	var data result.NewMarkBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMarkBatch")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	marks, err := api.deps.ResultSvc.RecordBatch(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "recording marks")
	}
	return ctx.JSON(http.StatusCreated, marks)
}

// queryRows resolves the actor and returns their visible rows for the bound
// filter. Every read endpoint goes through it so listings, the HTML view and
// the exports all see identical data.
func (api *resultApi) queryRows(ctx echo.Context) ([]result.Row, error) {
	filter := new(result.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return []result.Row{}, nil
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return nil, errors.Wrap(err, "getting context user")
	}

	rows, err := api.deps.ResultSvc.Query(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	if rows == nil {
		rows = []result.Row{}
	}
	return rows, nil
}

func (api *resultApi) query(ctx echo.Context) error {
	rows, err := api.queryRows(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *resultApi) view(ctx echo.Context) error {
	rows, err := api.queryRows(ctx)
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "results.gohtml", echo.Map{"Rows": rows})
}

func (api *resultApi) exportPDF(ctx echo.Context) error {
	rows, err := api.queryRows(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := api.deps.PDFSvc.WriteResults(&buf, rows); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="results.pdf"`)
	return ctx.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (api *resultApi) exportXLSX(ctx echo.Context) error {
	rows, err := api.queryRows(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := api.deps.XLSXSvc.WriteResults(&buf, rows); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="results.xlsx"`)
	return ctx.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (api *resultApi) reportCard(ctx echo.Context) error {
	studentID, err := pathID(ctx)
	if err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	rows, err := api.deps.ResultSvc.QueryForStudent(reqCtx, actor, studentID, result.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	student, err := api.deps.UserSvc.GetStudent(reqCtx, studentID)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	var buf bytes.Buffer
	if err := api.deps.PDFSvc.WriteReportCard(&buf, student, rows); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report-card.pdf"`)
	return ctx.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (api *resultApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.deps.ResultSvc.Delete(ctx.Request().Context(), actor, id); err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	return ctx.NoContent(http.StatusNoContent)
}
