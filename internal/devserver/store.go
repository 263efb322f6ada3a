package devserver

import (
	"sync"

	"fitcoach-client/internal/domain"
)

// account pairs a user record with the stub's auth material.
type account struct {
	user         domain.UserRecord
	passwordHash string
	appleSub     string
}

// memoryStore is the stub's whole persistence layer. Everything lives
// in process memory behind one mutex; restarting the server wipes it.
type memoryStore struct {
	mu          sync.Mutex
	accounts    map[string]*account // by user ID
	byEmail     map[string]string   // lower(email) -> user ID
	byAppleSub  map[string]string   // apple subject -> user ID
	exercises   map[string]domain.Exercise
	assignments map[string]domain.Assignment
	progress    []domain.ProgressEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:    map[string]*account{},
		byEmail:     map[string]string{},
		byAppleSub:  map[string]string{},
		exercises:   map[string]domain.Exercise{},
		assignments: map[string]domain.Assignment{},
	}
}
