package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/progressiveschool/progressive/core/bulletin"
)

type bulletinRepository struct {
	db *bulletinTables
}

var _ bulletin.Repository = (*bulletinRepository)(nil) // interface compliance check

func NewBulletinRepository(db *DB) bulletin.Repository {
	return &bulletinRepository{db: db.bulletin}
}

func (repo *bulletinRepository) nextPK() uint {
	repo.db.pkCount++
	return repo.db.pkCount
}

func matchAudience(audience string, audiences []string) bool {
	for _, a := range audiences {
		if audience == a {
			return true
		}
	}
	return false
}

func (repo *bulletinRepository) CreateAnnouncement(ctx context.Context, ann bulletin.Announcement) (bulletin.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	ann.ID = repo.nextPK()
	repo.db.announcements[ann.ID] = &ann
	return ann, nil
}

func (repo *bulletinRepository) QueryAnnouncements(ctx context.Context, audiences ...string) ([]bulletin.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var anns []bulletin.Announcement
	for _, ann := range repo.db.announcements {
		if matchAudience(ann.Audience, audiences) {
			anns = append(anns, *ann)
		}
	}
	sort.Slice(anns, func(i, j int) bool {
		if !anns[i].CreatedAt.Equal(anns[j].CreatedAt) {
			return anns[i].CreatedAt.After(anns[j].CreatedAt)
		}
		return anns[i].ID > anns[j].ID
	})
	return anns, nil
}

func (repo *bulletinRepository) GetAnnouncementByID(ctx context.Context, id uint) (bulletin.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if ann, ok := repo.db.announcements[id]; ok {
		return *ann, nil
	}
	return bulletin.Announcement{}, bulletin.ErrNotFound
}

func (repo *bulletinRepository) UpdateAnnouncement(ctx context.Context, ann bulletin.Announcement) (bulletin.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.announcements[ann.ID]; !ok {
		return bulletin.Announcement{}, bulletin.ErrNotFound
	}
	repo.db.announcements[ann.ID] = &ann
	return ann, nil
}

func (repo *bulletinRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.announcements, id)
	}
	return nil
}

func (repo *bulletinRepository) CreateEvent(ctx context.Context, evt bulletin.Event) (bulletin.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	evt.ID = repo.nextPK()
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *bulletinRepository) QueryEvents(ctx context.Context, after time.Time, audiences ...string) ([]bulletin.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var evts []bulletin.Event
	for _, evt := range repo.db.events {
		if evt.EndsAt.Before(after) {
			continue
		}
		if matchAudience(evt.Audience, audiences) {
			evts = append(evts, *evt)
		}
	}
	sort.Slice(evts, func(i, j int) bool {
		if !evts[i].StartsAt.Equal(evts[j].StartsAt) {
			return evts[i].StartsAt.Before(evts[j].StartsAt)
		}
		return evts[i].ID < evts[j].ID
	})
	return evts, nil
}

func (repo *bulletinRepository) GetEventByID(ctx context.Context, id uint) (bulletin.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return bulletin.Event{}, bulletin.ErrNotFound
}

func (repo *bulletinRepository) UpdateEvent(ctx context.Context, evt bulletin.Event) (bulletin.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.events[evt.ID]; !ok {
		return bulletin.Event{}, bulletin.ErrNotFound
	}
	repo.db.events[evt.ID] = &evt
	return evt, nil
}

func (repo *bulletinRepository) DeleteEventsByID(ctx context.Context, ids ...uint) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.events, id)
	}
	return nil
}
