package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/user"
)

// createAdmin updates or creates an active admin account.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
		}
	}
	usr.Role = user.RoleAdmin
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	active := true
	if usr.ID == 0 {
		usr.IsActive = true
		usr.CreatedAt = usr.UpdatedAt
		if usr, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
	} else if usr, err = cli.usrRepo.UpdateUser(ctx, usr, &active); err != nil {
		return err
	}
	color.Green("admin %q ready (id=%d)", usr.Username, usr.ID)
	return nil
}

func (cli *commandLine) addTeacher(first, last string) error {
	usr, err := cli.usrSvc.RegisterTeacher(context.Background(), user.NewTeacher{
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return err
	}
	color.Green("teacher %q registered", usr.Username)
	fmt.Fprintf(cli.out, "email: %s\n", usr.Email)
	return nil
}

func (cli *commandLine) addStudent(first, last string, deptID, courseID, classID, semesterID uint) error {
	usr, err := cli.usrSvc.RegisterStudent(context.Background(), user.NewStudent{
		FirstName:    first,
		LastName:     last,
		DepartmentID: deptID,
		CourseID:     courseID,
		ClassID:      classID,
		SemesterID:   semesterID,
	})
	if err != nil {
		return err
	}
	color.Green("student %q registered", usr.Name())
	fmt.Fprintf(cli.out, "admission number: %s\nemail: %s\n", usr.AdmissionNumber, usr.Email)
	return nil
}
