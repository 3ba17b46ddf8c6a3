package gormrepos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/progressiveschool/progressive/core/bulletin"
)

type bulletinRepository struct {
	db *gorm.DB
}

var _ bulletin.Repository = (*bulletinRepository)(nil) // interface compliance check

func NewBulletinRepository(db *gorm.DB) bulletin.Repository {
	return &bulletinRepository{db: db}
}

func bulletinNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bulletin.ErrNotFound
	}
	return err
}

func (repo *bulletinRepository) CreateAnnouncement(ctx context.Context, ann bulletin.Announcement) (bulletin.Announcement, error) {
	if err := repo.db.WithContext(ctx).Create(&ann).Error; err != nil {
		return bulletin.Announcement{}, err
	}
	return ann, nil
}

func (repo *bulletinRepository) QueryAnnouncements(ctx context.Context, audiences ...string) ([]bulletin.Announcement, error) {
	var anns []bulletin.Announcement
	err := repo.db.WithContext(ctx).
		Where("audience IN ?", audiences).
		Order("created_at DESC, id DESC").
		Find(&anns).Error
	if err != nil {
		return nil, err
	}
	return anns, nil
}

func (repo *bulletinRepository) GetAnnouncementByID(ctx context.Context, id uint) (bulletin.Announcement, error) {
	var ann bulletin.Announcement
	if err := repo.db.WithContext(ctx).First(&ann, id).Error; err != nil {
		return bulletin.Announcement{}, bulletinNotFound(err)
	}
	return ann, nil
}

func (repo *bulletinRepository) UpdateAnnouncement(ctx context.Context, ann bulletin.Announcement) (bulletin.Announcement, error) {
	if err := repo.db.WithContext(ctx).Save(&ann).Error; err != nil {
		return bulletin.Announcement{}, err
	}
	return ann, nil
}

func (repo *bulletinRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&bulletin.Announcement{}, ids).Error
}

func (repo *bulletinRepository) CreateEvent(ctx context.Context, evt bulletin.Event) (bulletin.Event, error) {
	if err := repo.db.WithContext(ctx).Create(&evt).Error; err != nil {
		return bulletin.Event{}, err
	}
	return evt, nil
}

func (repo *bulletinRepository) QueryEvents(ctx context.Context, after time.Time, audiences ...string) ([]bulletin.Event, error) {
	var evts []bulletin.Event
	err := repo.db.WithContext(ctx).
		Where("audience IN ? AND ends_at >= ?", audiences, after).
		Order("starts_at, id").
		Find(&evts).Error
	if err != nil {
		return nil, err
	}
	return evts, nil
}

func (repo *bulletinRepository) GetEventByID(ctx context.Context, id uint) (bulletin.Event, error) {
	var evt bulletin.Event
	if err := repo.db.WithContext(ctx).First(&evt, id).Error; err != nil {
		return bulletin.Event{}, bulletinNotFound(err)
	}
	return evt, nil
}

func (repo *bulletinRepository) UpdateEvent(ctx context.Context, evt bulletin.Event) (bulletin.Event, error) {
	if err := repo.db.WithContext(ctx).Save(&evt).Error; err != nil {
		return bulletin.Event{}, err
	}
	return evt, nil
}

func (repo *bulletinRepository) DeleteEventsByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&bulletin.Event{}, ids).Error
}
