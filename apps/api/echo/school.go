package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/progressiveschool/progressive/core/school"
)

type schoolApi struct {
	deps ServerDeps
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := schoolApi{deps: deps}

	sg := g.Group("/school", jwt)

	admin := adminMiddleware()

	dg := sg.Group("/departments")
	dg.GET("", api.queryDepartments)
	dg.POST("", api.createDepartment, admin)
	dg.PUT("/:id", api.updateDepartment, admin)
	dg.DELETE("/:id", api.destroyDepartment, admin)

	cg := sg.Group("/courses")
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, admin)
	cg.PUT("/:id", api.updateCourse, admin)
	cg.DELETE("/:id", api.destroyCourse, admin)

	subg := sg.Group("/subjects")
	subg.GET("", api.querySubjects)
	subg.POST("", api.createSubject, admin)
	subg.PUT("/:id", api.updateSubject, admin)
	subg.DELETE("/:id", api.destroySubject, admin)

	clg := sg.Group("/classes")
	clg.GET("", api.queryClasses)
	clg.POST("", api.createClass, admin)
	clg.PUT("/:id", api.updateClass, admin)
	clg.DELETE("/:id", api.destroyClass, admin)

	semg := sg.Group("/semesters")
	semg.GET("", api.querySemesters)
	semg.POST("", api.createSemester, admin)
	semg.PUT("/:id", api.updateSemester, admin)
	semg.DELETE("/:id", api.destroySemester, admin)

	ag := sg.Group("/assignments", staffMiddleware())
	ag.GET("", api.queryAssignments)
	ag.POST("", api.createAssignment)
	ag.DELETE("/:id", api.destroyAssignment)
}

func pathID(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return uint(id), nil
}

// Departments

func (api *schoolApi) queryDepartments(ctx echo.Context) error {
	deps, err := api.deps.SchoolSvc.QueryDepartments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if deps == nil {
		deps = []school.Department{}
	}
	return ctx.JSON(http.StatusOK, deps)
}

func (api *schoolApi) createDepartment(ctx echo.Context) error {
	var data school.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	dep, err := api.deps.SchoolSvc.CreateDepartment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dep)
}

func (api *schoolApi) updateDepartment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	dep, err := api.deps.SchoolSvc.UpdateDepartment(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dep)
}

func (api *schoolApi) destroyDepartment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SchoolSvc.DeleteDepartments(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Courses

func (api *schoolApi) queryCourses(ctx echo.Context) error {
	courses, err := api.deps.SchoolSvc.QueryCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []school.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) createCourse(ctx echo.Context) error {
	var data school.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	crs, err := api.deps.SchoolSvc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *schoolApi) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	crs, err := api.deps.SchoolSvc.UpdateCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *schoolApi) destroyCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SchoolSvc.DeleteCourses(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	subs, err := api.deps.SchoolSvc.QuerySubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []school.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	sub, err := api.deps.SchoolSvc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *schoolApi) updateSubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	sub, err := api.deps.SchoolSvc.UpdateSubject(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *schoolApi) destroySubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SchoolSvc.DeleteSubjects(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	classes, err := api.deps.SchoolSvc.QueryClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.SchoolClass{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	var data school.NewSchoolClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchoolClass")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	cls, err := api.deps.SchoolSvc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) updateClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.NewSchoolClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchoolClass")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	cls, err := api.deps.SchoolSvc.UpdateClass(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroyClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SchoolSvc.DeleteClasses(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Semesters

func (api *schoolApi) querySemesters(ctx echo.Context) error {
	sems, err := api.deps.SchoolSvc.QuerySemesters(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying semesters")
	}
	if sems == nil {
		sems = []school.Semester{}
	}
	return ctx.JSON(http.StatusOK, sems)
}

func (api *schoolApi) createSemester(ctx echo.Context) error {
	var data school.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	sem, err := api.deps.SchoolSvc.CreateSemester(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating semester")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *schoolApi) updateSemester(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	sem, err := api.deps.SchoolSvc.UpdateSemester(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating semester")
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *schoolApi) destroySemester(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.deps.SchoolSvc.DeleteSemesters(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *schoolApi) queryAssignments(ctx echo.Context) error {
	filter := new(school.AssignmentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.AssignmentRow{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// teachers only see their own assignments
	if claims.IsTeacher() {
		filter.TeacherID = claims.UserID()
	}

	rows, err := api.deps.SchoolSvc.QueryAssignments(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if rows == nil {
		rows = []school.AssignmentRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *schoolApi) createAssignment(ctx echo.Context) error {
	var data school.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// teachers assign themselves; only admins may set a teacher
	if !claims.IsAdmin() || data.TeacherID == 0 {
		data.TeacherID = claims.UserID()
	}

	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	ts, err := api.deps.SchoolSvc.CreateAssignment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, ts)
}

func (api *schoolApi) destroyAssignment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var teacherID uint
	if claims.IsTeacher() {
		teacherID = claims.UserID()
	}

	if err := api.deps.SchoolSvc.DeleteAssignment(ctx.Request().Context(), teacherID, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
