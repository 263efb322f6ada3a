package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fitcoach-client/internal/api/apitime"
	"fitcoach-client/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	s.store.mu.Lock()
	id, ok := s.store.byEmail[strings.ToLower(req.Email)]
	var acct *account
	if ok {
		acct = s.store.accounts[id]
	}
	s.store.mu.Unlock()

	// hide whether the account exists
	if acct == nil || verifyPassword(acct.passwordHash, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.issuer.issue(acct.user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	s.log.Infow("login", "userID", acct.user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": acct.user})
}

type registerRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password and role required"})
		return
	}
	if req.Role != domain.RoleTrainer && req.Role != domain.RoleClient {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := s.store.byEmail[email]; exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	user := domain.UserRecord{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     email,
		Roles:     []domain.Role{req.Role},
		CreatedAt: apitime.New(time.Now()),
	}
	s.store.accounts[user.ID] = &account{user: user, passwordHash: hash}
	s.store.byEmail[email] = user.ID

	// no token on register; the client logs in afterwards
	c.JSON(http.StatusCreated, user)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	// Always succeed so the endpoint leaks nothing about accounts. The
	// reset token only appears in the server log.
	s.log.Infow("password reset requested",
		"email", req.Email, "resetToken", randomString(24))
	c.Status(http.StatusNoContent)
}

type applePrecheckRequest struct {
	IdentityToken string `json:"identityToken" binding:"required"`
}

// appleIdentity pulls the subject and email out of an Apple identity
// token. The stub trusts the token as-is; only signature-less parsing
// happens here.
func appleIdentity(identityToken string) (sub, email string, err error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(identityToken, claims); err != nil {
		return "", "", err
	}
	sub, _ = claims["sub"].(string)
	email, _ = claims["email"].(string)
	return sub, email, nil
}

func (s *Server) applePrecheck(c *gin.Context) {
	var req applePrecheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identityToken required"})
		return
	}

	sub, email, err := appleIdentity(req.IdentityToken)
	if err != nil || sub == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed identity token"})
		return
	}

	s.store.mu.Lock()
	_, bySub := s.store.byAppleSub[sub]
	_, byEmail := s.store.byEmail[strings.ToLower(email)]
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"user_exists": bySub || byEmail})
}

type appleCallbackRequest struct {
	IdentityToken string      `json:"identityToken" binding:"required"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Role          domain.Role `json:"role"`
}

func (s *Server) appleCallback(c *gin.Context) {
	var req appleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identityToken required"})
		return
	}

	sub, email, err := appleIdentity(req.IdentityToken)
	if err != nil || sub == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed identity token"})
		return
	}

	s.store.mu.Lock()
	id, exists := s.store.byAppleSub[sub]
	if !exists && email != "" {
		id, exists = s.store.byEmail[strings.ToLower(email)]
	}

	var acct *account
	isNew := !exists
	if exists {
		acct = s.store.accounts[id]
		if acct.appleSub == "" {
			acct.appleSub = sub
			s.store.byAppleSub[sub] = acct.user.ID
		}
	} else {
		role := req.Role
		if role != domain.RoleTrainer && role != domain.RoleClient {
			role = domain.RoleClient
		}
		name := strings.TrimSpace(req.FirstName + " " + req.LastName)
		if name == "" {
			name = "Apple User"
		}
		user := domain.UserRecord{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     strings.ToLower(email),
			Roles:     []domain.Role{role},
			CreatedAt: apitime.New(time.Now()),
		}
		acct = &account{user: user, appleSub: sub}
		s.store.accounts[user.ID] = acct
		s.store.byAppleSub[sub] = user.ID
		if email != "" {
			s.store.byEmail[strings.ToLower(email)] = user.ID
		}
	}
	s.store.mu.Unlock()

	token, err := s.issuer.issue(acct.user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"user":      acct.user,
		"isNewUser": isNew,
	})
}

// ----------------------------
// Trainer endpoints
// ----------------------------

func (s *Server) listExercises(c *gin.Context) {
	uid := c.GetString(ctxUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := []domain.Exercise{}
	for _, ex := range s.store.exercises {
		if ex.TrainerID == uid {
			out = append(out, ex)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createExercise(c *gin.Context) {
	var ex domain.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil || ex.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exercise name required"})
		return
	}

	ex.ID = uuid.NewString()
	ex.TrainerID = c.GetString(ctxUserID)
	ex.CreatedAt = apitime.New(time.Now())

	s.store.mu.Lock()
	s.store.exercises[ex.ID] = ex
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, ex)
}

func (s *Server) updateExercise(c *gin.Context) {
	var ex domain.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed exercise"})
		return
	}
	id := c.Param("id")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	existing, ok := s.store.exercises[id]
	if !ok || existing.TrainerID != c.GetString(ctxUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "exercise not found"})
		return
	}

	ex.ID = existing.ID
	ex.TrainerID = existing.TrainerID
	ex.CreatedAt = existing.CreatedAt
	s.store.exercises[id] = ex
	c.JSON(http.StatusOK, ex)
}

func (s *Server) deleteExercise(c *gin.Context) {
	id := c.Param("id")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	existing, ok := s.store.exercises[id]
	if !ok || existing.TrainerID != c.GetString(ctxUserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "exercise not found"})
		return
	}
	delete(s.store.exercises, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) listClients(c *gin.Context) {
	uid := c.GetString(ctxUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := []domain.UserRecord{}
	for _, acct := range s.store.accounts {
		if acct.user.TrainerID == uid {
			out = append(out, acct.user)
		}
	}
	c.JSON(http.StatusOK, out)
}

type assignWorkoutRequest struct {
	Workout domain.Workout `json:"workout" binding:"required"`
	DueDate apitime.Time   `json:"dueDate"`
}

func (s *Server) assignWorkout(c *gin.Context) {
	var req assignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Workout.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workout required"})
		return
	}

	clientID := c.Param("id")
	trainerID := c.GetString(ctxUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	acct, ok := s.store.accounts[clientID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	// claim the client on first assignment
	if acct.user.TrainerID == "" {
		acct.user.TrainerID = trainerID
	} else if acct.user.TrainerID != trainerID {
		c.JSON(http.StatusConflict, gin.H{"error": "client belongs to another trainer"})
		return
	}

	req.Workout.ID = uuid.NewString()
	assignment := domain.Assignment{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		TrainerID: trainerID,
		Workout:   req.Workout,
		DueDate:   req.DueDate,
		CreatedAt: apitime.New(time.Now()),
	}
	s.store.assignments[assignment.ID] = assignment
	c.JSON(http.StatusCreated, assignment)
}

// ----------------------------
// Client endpoints
// ----------------------------

func (s *Server) listAssignments(c *gin.Context) {
	uid := c.GetString(ctxUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := []domain.Assignment{}
	for _, a := range s.store.assignments {
		if a.ClientID == uid {
			out = append(out, a)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) logProgress(c *gin.Context) {
	var entry domain.ProgressEntry
	if err := c.ShouldBindJSON(&entry); err != nil || entry.AssignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignmentId required"})
		return
	}

	uid := c.GetString(ctxUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	a, ok := s.store.assignments[entry.AssignmentID]
	if !ok || a.ClientID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
		return
	}

	entry.ID = uuid.NewString()
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = apitime.New(time.Now())
	}
	s.store.progress = append(s.store.progress, entry)

	a.Completed = true
	s.store.assignments[a.ID] = a

	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listProgress(c *gin.Context) {
	uid := c.GetString(ctxUserID)

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := apitime.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed since parameter"})
			return
		}
		since = parsed.Time
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := []domain.ProgressEntry{}
	for _, entry := range s.store.progress {
		a, ok := s.store.assignments[entry.AssignmentID]
		if !ok || a.ClientID != uid {
			continue
		}
		if !since.IsZero() && entry.LoggedAt.Before(since) {
			continue
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}
