package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/bulletin"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
	emailsvc "github.com/progressiveschool/progressive/services/email"
	exportsvc "github.com/progressiveschool/progressive/services/export"
	logsvc "github.com/progressiveschool/progressive/services/logger"
	"github.com/progressiveschool/progressive/storage/database/inmem"
)

type testApp struct {
	server *Server
	conf   *core.Config

	usrSvc    *user.Service
	schoolSvc *school.Service
	resultSvc *result.Service

	admin   user.User
	teacher user.User
	student user.User

	dept     school.Department
	course   school.Course
	subject  school.Subject
	class    school.SchoolClass
	semester school.Semester
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	conf := core.NewTestConfig()

	db, err := inmem.Open()
	require.NoError(t, err)

	usrSvc := user.NewService(conf, inmem.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf))
	schoolSvc := school.NewService(inmem.NewSchoolRepository(db))
	resultSvc := result.NewService(inmem.NewMarkRepository(db), schoolSvc, usrSvc)
	bulletinSvc := bulletin.NewService(inmem.NewBulletinRepository(db))
	validate, translator := core.NewValidator()

	app := &testApp{
		conf:      conf,
		usrSvc:    usrSvc,
		schoolSvc: schoolSvc,
		resultSvc: resultSvc,
	}

	app.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewConsoleLogger(nil),
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		SchoolSvc:      schoolSvc,
		ResultSvc:      resultSvc,
		BulletinSvc:    bulletinSvc,
		PDFSvc:         exportsvc.NewPDFService(conf),
		XLSXSvc:        exportsvc.NewXLSXService(),
		DisableReqLogs: true,
	})

	// seed an admin directly; students and teachers go through the services
	admin := user.User{
		FirstName: "Head", LastName: "Master",
		Username: "headmaster", Email: "headmaster@progressive.sch",
		Role: user.RoleAdmin, IsActive: true,
	}
	require.NoError(t, admin.SetPassword("s3cr3t-pwd"))
	app.admin, err = createUser(ctx, db, admin)
	require.NoError(t, err)

	app.teacher, err = usrSvc.RegisterTeacher(ctx, user.NewTeacher{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)

	app.dept, err = schoolSvc.CreateDepartment(ctx, school.NewDepartment{Name: "Sciences"})
	require.NoError(t, err)
	app.course, err = schoolSvc.CreateCourse(ctx, school.NewCourse{Name: "Computer Science", DepartmentID: app.dept.ID})
	require.NoError(t, err)
	app.subject, err = schoolSvc.CreateSubject(ctx, school.NewSubject{Name: "Algorithms", CourseID: app.course.ID})
	require.NoError(t, err)
	app.class, err = schoolSvc.CreateClass(ctx, school.NewSchoolClass{Name: "CS-1A", CourseID: app.course.ID})
	require.NoError(t, err)
	app.semester, err = schoolSvc.CreateSemester(ctx, school.NewSemester{
		Name:      "Fall 2026",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	app.student, err = usrSvc.RegisterStudent(ctx, user.NewStudent{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		DepartmentID: app.dept.ID,
		CourseID:     app.course.ID,
		ClassID:      app.class.ID,
		SemesterID:   app.semester.ID,
	})
	require.NoError(t, err)

	_, err = schoolSvc.CreateAssignment(ctx, school.NewAssignment{
		TeacherID:  app.teacher.ID,
		SubjectID:  app.subject.ID,
		ClassID:    app.class.ID,
		SemesterID: app.semester.ID,
	})
	require.NoError(t, err)

	return app
}

func createUser(ctx context.Context, db *inmem.DB, usr user.User) (user.User, error) {
	return inmem.NewUserRepository(db).CreateUser(ctx, usr)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(app.conf, GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestAPI_login(t *testing.T) {
	app := newTestApp(t)

	t.Run("wrong credentials", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{Username: "headmaster", Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid credentials", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{Username: "headmaster", Password: "s3cr3t-pwd"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		decodeJSON(t, rec, &resp)
		require.NotEmpty(t, resp.Token)

		claims, err := parseToken(app.conf, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, app.admin.ID, claims.UserID())
		assert.True(t, claims.IsAdmin())
	})

	t.Run("student logs in with admission number", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", LoginRequest{
			Username: app.student.AdmissionNumber,
			Password: app.student.AdmissionNumber,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPI_authRequired(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/v1/results", "/v1/dashboard", "/v1/school/subjects"} {
		rec := app.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := app.do(http.MethodGet, "/v1/results", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_recordMark(t *testing.T) {
	app := newTestApp(t)

	newMark := func(score float64) result.NewMark {
		return result.NewMark{
			StudentID:  app.student.ID,
			SubjectID:  app.subject.ID,
			ClassID:    app.class.ID,
			SemesterID: app.semester.ID,
			Score:      score,
		}
	}

	t.Run("student cannot record", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/results", app.token(t, app.student), newMark(50))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unassigned teacher is forbidden", func(t *testing.T) {
		other, err := app.usrSvc.RegisterTeacher(context.Background(), user.NewTeacher{FirstName: "Alan", LastName: "Kay"})
		require.NoError(t, err)
		rec := app.do(http.MethodPost, "/v1/results", app.token(t, other), newMark(50))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("out of range score is a validation error", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/results", app.token(t, app.teacher), newMark(101))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("recording twice keeps one row", func(t *testing.T) {
		token := app.token(t, app.teacher)

		rec := app.do(http.MethodPost, "/v1/results", token, newMark(55))
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = app.do(http.MethodPost, "/v1/results", token, newMark(92))
		require.Equal(t, http.StatusCreated, rec.Code)

		var mrk result.Mark
		decodeJSON(t, rec, &mrk)
		assert.Equal(t, "A", mrk.Grade)

		rows := app.queryRows(t, app.token(t, app.admin))
		require.Len(t, rows, 1)
		assert.Equal(t, 92.0, rows[0].Score)
	})
}

func (app *testApp) queryRows(t *testing.T, token string) []result.Row {
	t.Helper()
	rec := app.do(http.MethodGet, "/v1/results", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []result.Row
	decodeJSON(t, rec, &rows)
	return rows
}

func TestAPI_resultScoping(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.resultSvc.Record(ctx, app.teacher, result.NewMark{
		StudentID:  app.student.ID,
		SubjectID:  app.subject.ID,
		ClassID:    app.class.ID,
		SemesterID: app.semester.ID,
		Score:      88,
	})
	require.NoError(t, err)

	t.Run("student sees own rows", func(t *testing.T) {
		rows := app.queryRows(t, app.token(t, app.student))
		require.Len(t, rows, 1)
		assert.Equal(t, app.student.ID, rows[0].StudentID)
	})

	t.Run("unassigned teacher sees nothing", func(t *testing.T) {
		other, err := app.usrSvc.RegisterTeacher(ctx, user.NewTeacher{FirstName: "John", LastName: "Backus"})
		require.NoError(t, err)
		rows := app.queryRows(t, app.token(t, other))
		assert.Empty(t, rows)
	})

	t.Run("exports carry the same rows", func(t *testing.T) {
		token := app.token(t, app.student)
		jsonRows := app.queryRows(t, token)

		rec := app.do(http.MethodGet, "/v1/results/export/pdf", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

		rec = app.do(http.MethodGet, "/v1/results/view", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		for _, row := range jsonRows {
			assert.Contains(t, rec.Body.String(), row.SubjectName)
			assert.Contains(t, rec.Body.String(), row.AdmissionNumber)
		}
	})

	t.Run("report card of another student is not found", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/results/report-card/99999", app.token(t, app.student), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("own report card downloads", func(t *testing.T) {
		path := "/v1/results/report-card/" + itoa(app.student.ID)
		rec := app.do(http.MethodGet, path, app.token(t, app.student), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})
}

func TestAPI_assignments(t *testing.T) {
	app := newTestApp(t)

	t.Run("duplicate assignment is rejected", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/school/assignments", app.token(t, app.teacher), school.NewAssignment{
			SubjectID:  app.subject.ID,
			ClassID:    app.class.ID,
			SemesterID: app.semester.ID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("students cannot touch assignments", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/school/assignments", app.token(t, app.student), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher only sees own assignments", func(t *testing.T) {
		other, err := app.usrSvc.RegisterTeacher(context.Background(), user.NewTeacher{FirstName: "Barbara", LastName: "Liskov"})
		require.NoError(t, err)

		rec := app.do(http.MethodGet, "/v1/school/assignments", app.token(t, other), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var rows []school.AssignmentRow
		decodeJSON(t, rec, &rows)
		assert.Empty(t, rows)
	})
}

func TestAPI_dashboard(t *testing.T) {
	app := newTestApp(t)

	t.Run("admin gets counts", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/dashboard", app.token(t, app.admin), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dashboardResponse
		decodeJSON(t, rec, &resp)
		require.NotNil(t, resp.Counts)
		assert.Equal(t, int64(1), resp.Counts.Students)
		assert.Equal(t, int64(1), resp.Counts.Teachers)
		assert.Equal(t, int64(1), resp.Counts.Assignments)
	})

	t.Run("teacher gets assignments, no counts", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/dashboard", app.token(t, app.teacher), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dashboardResponse
		decodeJSON(t, rec, &resp)
		assert.Nil(t, resp.Counts)
		assert.Len(t, resp.Assignments, 1)
	})

	t.Run("empty stats carry no mean", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/dashboard/stats", app.token(t, app.student), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats result.Stats
		decodeJSON(t, rec, &stats)
		assert.Equal(t, 0, stats.Count)
		assert.Nil(t, stats.Mean)
	})
}

func TestAPI_adminCatalog(t *testing.T) {
	app := newTestApp(t)

	t.Run("teacher cannot create departments", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/school/departments", app.token(t, app.teacher), school.NewDepartment{Name: "Arts"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("duplicate department name is rejected", func(t *testing.T) {
		token := app.token(t, app.admin)
		rec := app.do(http.MethodPost, "/v1/school/departments", token, school.NewDepartment{Name: "Arts"})
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = app.do(http.MethodPost, "/v1/school/departments", token, school.NewDepartment{Name: "arts"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("registering a student allocates the next admission number", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/students", app.token(t, app.admin), user.NewStudent{
			FirstName:    "Edsger",
			LastName:     "Dijkstra",
			DepartmentID: app.dept.ID,
			CourseID:     app.course.ID,
			ClassID:      app.class.ID,
			SemesterID:   app.semester.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var usr user.User
		decodeJSON(t, rec, &usr)
		assert.Equal(t, "prog0002", usr.AdmissionNumber)
		assert.Equal(t, "prog0002@progstudent.sch", usr.Email)
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
