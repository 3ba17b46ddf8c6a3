package bulletin

import (
	"context"
	"errors"
	"time"

	"github.com/progressiveschool/progressive/core/user"
)

var ErrNotFound = errors.New("record not found")

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		// QueryAnnouncements returns announcements targeting any of the given
		// audiences, newest first.
		QueryAnnouncements(ctx context.Context, audiences ...string) ([]Announcement, error)
		GetAnnouncementByID(ctx context.Context, id uint) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		DeleteAnnouncementsByID(ctx context.Context, ids ...uint) error

		CreateEvent(ctx context.Context, evt Event) (Event, error)
		// QueryEvents returns events targeting any of the given audiences that
		// end at or after the given time, soonest first.
		QueryEvents(ctx context.Context, after time.Time, audiences ...string) ([]Event, error)
		GetEventByID(ctx context.Context, id uint) (Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...uint) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// audiencesFor maps a role to the audiences it can read. Admins see
// everything.
func audiencesFor(actor user.User) []string {
	switch {
	case actor.IsAdmin():
		return []string{AudienceAll, AudienceTeachers, AudienceStudents}
	case actor.IsTeacher():
		return []string{AudienceAll, AudienceTeachers}
	default:
		return []string{AudienceAll, AudienceStudents}
	}
}

func (svc *Service) CreateAnnouncement(ctx context.Context, actor user.User, na NewAnnouncement) (Announcement, error) {
	now := time.Now().UTC()
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:     na.Title,
		Body:      na.Body,
		Audience:  na.Audience,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// VisibleAnnouncements lists announcements the actor's role may see.
func (svc *Service) VisibleAnnouncements(ctx context.Context, actor user.User) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, audiencesFor(actor)...)
}

func (svc *Service) UpdateAnnouncement(ctx context.Context, id uint, na NewAnnouncement) (Announcement, error) {
	ann, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	ann.Title = na.Title
	ann.Body = na.Body
	ann.Audience = na.Audience
	ann.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAnnouncement(ctx, ann)
}

func (svc *Service) DeleteAnnouncements(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteAnnouncementsByID(ctx, ids...)
}

func (svc *Service) CreateEvent(ctx context.Context, actor user.User, ne NewEvent) (Event, error) {
	now := time.Now().UTC()
	return svc.repo.CreateEvent(ctx, Event{
		Title:     ne.Title,
		Location:  ne.Location,
		Audience:  ne.Audience,
		StartsAt:  ne.StartsAt,
		EndsAt:    ne.EndsAt,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpcomingEvents lists events the actor's role may see that have not ended.
func (svc *Service) UpcomingEvents(ctx context.Context, actor user.User) ([]Event, error) {
	return svc.repo.QueryEvents(ctx, time.Now().UTC(), audiencesFor(actor)...)
}

func (svc *Service) UpdateEvent(ctx context.Context, id uint, ne NewEvent) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	evt.Title = ne.Title
	evt.Location = ne.Location
	evt.Audience = ne.Audience
	evt.StartsAt = ne.StartsAt
	evt.EndsAt = ne.EndsAt
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) DeleteEvents(ctx context.Context, ids ...uint) error {
	return svc.repo.DeleteEventsByID(ctx, ids...)
}
