package main

import (
	"context"
	"errors"
	"time"

	"github.com/fatih/color"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/school"
)

// seed bootstraps a minimal catalog on a fresh database. Existing entries are
// reported and skipped.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	for _, name := range []string{"Sciences", "Humanities"} {
		if _, err := cli.schoolSvc.CreateDepartment(ctx, school.NewDepartment{Name: name}); err != nil {
			var vErr *core.ValidationError
			if errors.As(err, &vErr) {
				color.Yellow("department %q already exists, skipped", name)
				continue
			}
			return err
		}
		color.Green("department %q created", name)
	}

	now := time.Now().UTC()
	name := now.Format("January 2006")
	semesters, err := cli.schoolSvc.QuerySemesters(ctx)
	if err != nil {
		return err
	}
	for _, sem := range semesters {
		if sem.Name == name {
			color.Yellow("semester %q already exists, skipped", name)
			return nil
		}
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if _, err := cli.schoolSvc.CreateSemester(ctx, school.NewSemester{
		Name:      name,
		StartDate: start,
		EndDate:   start.AddDate(0, 4, 0),
	}); err != nil {
		return err
	}
	color.Green("semester %q created", name)
	return nil
}
