package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/progressiveschool/progressive/core/user"
)

func (cli *commandLine) listStudents(search string) error {
	students, err := cli.usrRepo.FilterUsers(context.Background(), user.QueryFilter{
		Search: search,
		Role:   user.RoleStudent,
	})
	if err != nil {
		return err
	}
	if len(students) == 0 {
		fmt.Fprintln(cli.out, "No students found.")
		return nil
	}

	color.Cyan("%d student(s)", len(students))
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Adm No", "Name", "Email", "Class", "Active"})
	for _, s := range students {
		classID := ""
		if s.ClassID != nil {
			classID = strconv.FormatUint(uint64(*s.ClassID), 10)
		}
		table.Append([]string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.AdmissionNumber,
			s.Name(),
			s.Email,
			classID,
			strconv.FormatBool(s.IsActive),
		})
	}
	table.Render()
	return nil
}
