package api

import (
	"context"

	"fitcoach-client/internal/api/apitime"
	"fitcoach-client/internal/apierr"
	"fitcoach-client/internal/domain"
)

// TrainerService wraps the trainer-scoped endpoints: the exercise
// library, managed clients and workout assignment.
type TrainerService struct {
	client *Client
}

func NewTrainerService(client *Client) *TrainerService {
	return &TrainerService{client: client}
}

func (s *TrainerService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	if err := s.client.Get(ctx, "trainer/exercises", &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (s *TrainerService) CreateExercise(ctx context.Context, ex domain.Exercise) (*domain.Exercise, error) {
	if ex.Name == "" {
		return nil, apierr.NewUnknown("exercise name must not be empty", nil)
	}
	var created domain.Exercise
	if err := s.client.Post(ctx, "trainer/exercises", ex, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *TrainerService) UpdateExercise(ctx context.Context, ex domain.Exercise) (*domain.Exercise, error) {
	var updated domain.Exercise
	if err := s.client.Put(ctx, "trainer/exercises/"+ex.ID, ex, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *TrainerService) DeleteExercise(ctx context.Context, exerciseID string) error {
	return s.client.Delete(ctx, "trainer/exercises/"+exerciseID, nil)
}

func (s *TrainerService) ListClients(ctx context.Context) ([]domain.UserRecord, error) {
	var clients []domain.UserRecord
	if err := s.client.Get(ctx, "trainer/clients", &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

type assignWorkoutRequest struct {
	Workout domain.Workout `json:"workout"`
	DueDate apitime.Time   `json:"dueDate"`
}

func (s *TrainerService) AssignWorkout(ctx context.Context, clientID string, workout domain.Workout, due apitime.Time) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := s.client.Post(ctx, "trainer/clients/"+clientID+"/assignments", assignWorkoutRequest{
		Workout: workout,
		DueDate: due,
	}, &assignment)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
