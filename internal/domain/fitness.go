package domain

import (
	"github.com/shopspring/decimal"

	"fitcoach-client/internal/api/apitime"
)

// Exercise is one entry in a trainer's exercise library.
type Exercise struct {
	ID          string       `json:"id"`
	TrainerID   string       `json:"trainerId"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	MuscleGroup string       `json:"muscleGroup,omitempty"`
	VideoURL    string       `json:"videoUrl,omitempty"`
	CreatedAt   apitime.Time `json:"createdAt"`
}

// WorkoutItem is one prescribed exercise within a workout.
type WorkoutItem struct {
	ExerciseID string          `json:"exerciseId"`
	Sets       int             `json:"sets"`
	Reps       int             `json:"reps"`
	Weight     decimal.Decimal `json:"weight"`
	RestSec    int             `json:"restSec,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Workout is a named sequence of items a trainer assigns to a client.
type Workout struct {
	ID        string        `json:"id,omitempty"`
	Name      string        `json:"name"`
	Items     []WorkoutItem `json:"items"`
	CreatedAt apitime.Time  `json:"createdAt"`
}

// Assignment links a workout to a client with a due date.
type Assignment struct {
	ID        string       `json:"id"`
	ClientID  string       `json:"clientId"`
	TrainerID string       `json:"trainerId"`
	Workout   Workout      `json:"workout"`
	DueDate   apitime.Time `json:"dueDate"`
	Completed bool         `json:"completed"`
	CreatedAt apitime.Time `json:"createdAt"`
}

// ProgressEntry is a client-logged result for one assignment item.
// Weights and measurements use decimals so values like 72.35 survive
// the wire unchanged.
type ProgressEntry struct {
	ID           string          `json:"id,omitempty"`
	AssignmentID string          `json:"assignmentId"`
	ExerciseID   string          `json:"exerciseId"`
	Sets         int             `json:"sets"`
	Reps         int             `json:"reps"`
	Weight       decimal.Decimal `json:"weight"`
	BodyWeight   decimal.Decimal `json:"bodyWeight"`
	Notes        string          `json:"notes,omitempty"`
	LoggedAt     apitime.Time    `json:"loggedAt"`
}
