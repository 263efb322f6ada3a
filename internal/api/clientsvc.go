package api

import (
	"context"
	"net/url"
	"time"

	"fitcoach-client/internal/api/apitime"
	"fitcoach-client/internal/domain"
)

// ClientService wraps the client-scoped endpoints: assigned workouts
// and progress logging.
type ClientService struct {
	client *Client
}

func NewClientService(client *Client) *ClientService {
	return &ClientService{client: client}
}

func (s *ClientService) Assignments(ctx context.Context) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	if err := s.client.Get(ctx, "client/assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *ClientService) LogProgress(ctx context.Context, entry domain.ProgressEntry) (*domain.ProgressEntry, error) {
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = apitime.New(time.Now())
	}
	var logged domain.ProgressEntry
	if err := s.client.Post(ctx, "client/progress", entry, &logged); err != nil {
		return nil, err
	}
	return &logged, nil
}

// Progress returns the logged history, optionally bounded below by
// since.
func (s *ClientService) Progress(ctx context.Context, since time.Time) ([]domain.ProgressEntry, error) {
	var opts []RequestOption
	if !since.IsZero() {
		q := url.Values{}
		q.Set("since", apitime.Format(since))
		opts = append(opts, WithQuery(q))
	}

	var entries []domain.ProgressEntry
	if err := s.client.Get(ctx, "client/progress", &entries, opts...); err != nil {
		return nil, err
	}
	return entries, nil
}
