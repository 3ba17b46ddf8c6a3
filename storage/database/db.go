// Package database opens the postgres connection shared by the gorm
// repositories and owns schema migration.
package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/bulletin"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
)

func Open(conf *core.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if conf.Debug {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(conf.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// StatusCheck waits for the database to become reachable, retrying with a
// linear backoff until the context expires.
func StatusCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting database handle")
	}

	for attempt := 1; ; attempt++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "database never ready")
		}
	}
}

// Migrate creates or updates the schema for every domain model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&user.User{},
		&school.Department{},
		&school.Course{},
		&school.Subject{},
		&school.SchoolClass{},
		&school.Semester{},
		&school.TeacherSubject{},
		&result.Mark{},
		&bulletin.Announcement{},
		&bulletin.Event{},
	)
	return errors.Wrap(err, "migrating schema")
}
