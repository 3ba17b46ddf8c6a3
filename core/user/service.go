package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/progressiveschool/progressive/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

const (
	admissionPrefix  = "prog"
	studentEmailHost = "progstudent.sch"
	teacherEmailHost = "progressive.sch"
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id uint) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the names,
		// username, email or admission number.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...uint) error
		// LatestAdmissionNumber returns the highest admission number starting
		// with prefix, or "" when no student has one yet.
		LatestAdmissionNumber(ctx context.Context, prefix string) (string, error)
		CountByRole(ctx context.Context, role string) (int64, error)
	}

	Service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	secretKey = []byte(conf.SecretKey)
	passwordResetTimeoutDelta = conf.Server.PasswordResetTimeoutDelta
	return &Service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// nextAdmissionNumber allocates the next zero-padded admission number,
// e.g. prog0042.
func (svc *Service) nextAdmissionNumber(ctx context.Context) (string, error) {
	latest, err := svc.repo.LatestAdmissionNumber(ctx, admissionPrefix)
	if err != nil {
		return "", err
	}
	var max int
	if latest != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, admissionPrefix)); err == nil {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", admissionPrefix, max+1), nil
}

// RegisterStudent creates a student account. The admission number doubles as
// username and initial password; the derived email receives the credentials.
func (svc *Service) RegisterStudent(ctx context.Context, ns NewStudent) (User, error) {
	adm, err := svc.nextAdmissionNumber(ctx)
	if err != nil {
		return User{}, err
	}
	email := adm + "@" + studentEmailHost

	now := time.Now().UTC()
	usr := User{
		FirstName:       ns.FirstName,
		LastName:        ns.LastName,
		Username:        adm,
		Email:           email,
		Role:            RoleStudent,
		IsActive:        true,
		AdmissionNumber: adm,
		DepartmentID:    &ns.DepartmentID,
		CourseID:        &ns.CourseID,
		ClassID:         &ns.ClassID,
		SemesterID:      &ns.SemesterID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := usr.SetPassword(adm); err != nil {
		return User{}, err
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr, adm)
	return usr, nil
}

// RegisterTeacher creates a teacher account with a derived email and a
// generated initial password, which is emailed to the teacher.
func (svc *Service) RegisterTeacher(ctx context.Context, nt NewTeacher) (User, error) {
	uname := core.CleanString(nt.FirstName+nt.LastName, true /* lower */)
	uname = strings.ReplaceAll(uname, " ", "")
	email := uname + "@" + teacherEmailHost

	if err := svc.CheckUniqueness(ctx, uname, email); err != nil {
		return User{}, err
	}

	pwd := strings.SplitN(uuid.NewString(), "-", 2)[0]
	now := time.Now().UTC()
	usr := User{
		FirstName: nt.FirstName,
		LastName:  nt.LastName,
		Username:  uname,
		Email:     email,
		Role:      RoleTeacher,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr, pwd)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id uint) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

// GetStudent returns the user only if it is a student; anything else is
// reported as not found.
func (svc *Service) GetStudent(ctx context.Context, id uint) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsStudent() {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) CountByRole(ctx context.Context, role string) (int64, error) {
	return svc.repo.CountByRole(ctx, role)
}

func (svc *Service) Update(ctx context.Context, id uint, uu UpdateUser) (User, error) {
	usr := User{
		ID:           id,
		FirstName:    uu.FirstName,
		LastName:     uu.LastName,
		Username:     uu.Username,
		Email:        uu.Email,
		DepartmentID: uu.DepartmentID,
		CourseID:     uu.CourseID,
		ClassID:      uu.ClassID,
		SemesterID:   uu.SemesterID,
		UpdatedAt:    time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr.UpdatedAt = usr.LastLogin
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) Delete(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset emails a reset link to the account matching the email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	token := makeToken(usr)
	link := fmt.Sprintf("%s/password-reset/%s/%s", svc.conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject: "Password reset",
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nFollow this link to set a new password:\r\n%s\r\n\r\n"+
				"If you did not request a password reset, you can ignore this email.",
			usr.Name(), link,
		),
	})
	return nil
}

// ResetPassword sets a new password given a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return err
}

func (svc *Service) sendWelcomeEmail(usr User, pwd string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour account has been created.\r\n\r\n"+
				"Username: %s\r\nPassword: %s\r\n\r\n"+
				"Please log in at %s and change your password.",
			usr.Name(), usr.Username, pwd, svc.conf.FrontendBaseURL,
		),
	})
}
