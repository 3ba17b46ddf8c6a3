package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
	emailsvc "github.com/progressiveschool/progressive/services/email"
	"github.com/progressiveschool/progressive/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := core.NewTestConfig()
	db, err := inmem.Open()
	require.NoError(t, err)

	out := new(bytes.Buffer)
	usrRepo := inmem.NewUserRepository(db)
	cli := &commandLine{
		usrRepo:   usrRepo,
		usrSvc:    user.NewService(conf, usrRepo, emailsvc.NewConsoleServiceMock(conf)),
		schoolSvc: school.NewService(inmem.NewSchoolRepository(db)),
		out:       out,
	}
	return cli, out
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func run(cli *commandLine, tt cliTest) error {
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }
	return cli.run(append([]string{"admin"}, tt.args...))
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "missing email", args: []string{"createadmin", "-username", "root"}, wantErr: errHelp},
		{name: "empty password", args: []string{"createadmin", "-username", "root", "-email", "root@progressive.sch"}, wantErr: errHelp},
		{name: "creates", args: []string{"createadmin", "-username", "root", "-email", "root@progressive.sch"}, pwd: "s3cr3t-pwd"},
		{name: "updates existing", args: []string{"createadmin", "-username", "root", "-email", "root@progressive.sch"}, pwd: "newpass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(cli, tt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			usr, err := cli.usrRepo.GetUserByUsernameOrEmail(context.Background(), "root")
			require.NoError(t, err)
			assert.Equal(t, user.RoleAdmin, usr.Role)
			assert.True(t, usr.IsActive)
			assert.NoError(t, usr.CheckPassword(tt.pwd))
		})
	}

	// the update must not have created a second account
	admins, err := cli.usrRepo.FilterUsers(context.Background(), user.QueryFilter{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func Test_commandLine_addUsers(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	require.NoError(t, run(cli, cliTest{args: []string{"addteacher", "-first", "Grace", "-last", "Hopper"}}))
	teacher, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, "gracehopper")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, teacher.Role)

	assert.ErrorIs(t, run(cli, cliTest{args: []string{"addstudent", "-first", "Ada"}}), errHelp)

	require.NoError(t, run(cli, cliTest{args: []string{
		"addstudent", "-first", "Ada", "-last", "Lovelace",
		"-dept", "1", "-course", "1", "-class", "1", "-semester", "1",
	}}))
	student, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, "prog0001")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, student.Role)
	assert.Contains(t, out.String(), "prog0001")
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, run(cli, cliTest{
		args: []string{"createadmin", "-username", "awe", "-email", "awe@progressive.sch"},
		pwd:  "mdr-mdr",
	}))
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, "awe")
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(cli, tt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			refreshed, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, usr.Username)
			require.NoError(t, err)
			assert.NoError(t, refreshed.CheckPassword(tt.pwd))
		})
	}
}

func Test_commandLine_listStudents(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, run(cli, cliTest{args: []string{"liststudents"}}))
	assert.Contains(t, out.String(), "No students found.")

	out.Reset()
	require.NoError(t, run(cli, cliTest{args: []string{
		"addstudent", "-first", "Ada", "-last", "Lovelace",
		"-dept", "1", "-course", "1", "-class", "1", "-semester", "1",
	}}))

	out.Reset()
	require.NoError(t, run(cli, cliTest{args: []string{"liststudents"}}))
	assert.Contains(t, out.String(), "prog0001")
	assert.Contains(t, out.String(), "Ada Lovelace")

	out.Reset()
	require.NoError(t, run(cli, cliTest{args: []string{"liststudents", "-search", "nosuchname"}}))
	assert.Contains(t, out.String(), "No students found.")
}

func Test_commandLine_seed(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, run(cli, cliTest{args: []string{"seed"}}))
	deps, err := cli.schoolSvc.QueryDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
	semesters, err := cli.schoolSvc.QuerySemesters(ctx)
	require.NoError(t, err)
	assert.Len(t, semesters, 1)

	// second run skips everything
	require.NoError(t, run(cli, cliTest{args: []string{"seed"}}))
	deps, err = cli.schoolSvc.QueryDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
	semesters, err = cli.schoolSvc.QuerySemesters(ctx)
	require.NoError(t, err)
	assert.Len(t, semesters, 1)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var got *gorm.DB
	migrateFunc = func(db *gorm.DB) error {
		got = db
		return nil
	}
	require.NoError(t, run(cli, cliTest{args: []string{"migrate"}}))
	assert.Equal(t, cli.db, got)
}
