package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *gorm.DB
	usrRepo   user.Repository
	usrSvc    *user.Service
	schoolSvc *school.Service
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createadmin -username USERNAME -email EMAIL - create or update an admin account; the password is prompted next")
	fmt.Println("  addteacher -first FIRST -last LAST - register a teacher account")
	fmt.Println("  addstudent -first FIRST -last LAST -dept ID -course ID -class ID -semester ID - register a student account")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset a user's password")
	fmt.Println("  liststudents [-search TERM] - print registered students")
	fmt.Println("  migrate - apply the database schema")
	fmt.Println("  seed - bootstrap a minimal catalog")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email.")

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	addTeacherFirst := addTeacherCmd.String("first", "", "The teacher's first name.")
	addTeacherLast := addTeacherCmd.String("last", "", "The teacher's last name.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentFirst := addStudentCmd.String("first", "", "The student's first name.")
	addStudentLast := addStudentCmd.String("last", "", "The student's last name.")
	addStudentDept := addStudentCmd.Uint("dept", 0, "The student's department ID.")
	addStudentCourse := addStudentCmd.Uint("course", 0, "The student's course ID.")
	addStudentClass := addStudentCmd.Uint("class", 0, "The student's class ID.")
	addStudentSemester := addStudentCmd.Uint("semester", 0, "The student's current semester ID.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	listStudentsCmd := flag.NewFlagSet("liststudents", flag.ExitOnError)
	listStudentsSearch := listStudentsCmd.String("search", "", "Filter by name, username, email or admission number.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" || *createAdminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createAdminUname, *createAdminEmail, pwd)
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherFirst == "" || *addTeacherLast == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(*addTeacherFirst, *addTeacherLast)
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentFirst == "" || *addStudentLast == "" ||
			*addStudentDept == 0 || *addStudentCourse == 0 || *addStudentClass == 0 || *addStudentSemester == 0 {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(
			*addStudentFirst, *addStudentLast,
			*addStudentDept, *addStudentCourse, *addStudentClass, *addStudentSemester,
		)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "liststudents":
		if err := listStudentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listStudents(*listStudentsSearch)
	case "migrate":
		return cli.migrate()
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
