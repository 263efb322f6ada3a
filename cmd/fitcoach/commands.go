package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fitcoach-client/internal/api"
	"fitcoach-client/internal/api/apitime"
	"fitcoach-client/internal/domain"
	"fitcoach-client/internal/logger"
	"fitcoach-client/internal/session"
)

type cli struct {
	manager *session.Manager
	auth    *api.AuthService
	trainer *api.TrainerService
	client  *api.ClientService
}

func (a *cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "forgot-password":
		return a.forgotPassword(ctx, args)
	case "apple-login":
		return a.appleLogin(ctx, args)
	case "logout":
		a.manager.Clear(ctx)
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "exercises":
		return a.exercises(ctx, args)
	case "clients":
		return a.clients(ctx)
	case "assign":
		return a.assign(ctx, args)
	case "assignments":
		return a.assignments(ctx)
	case "progress":
		return a.progress(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	logger.FromContext(ctx).Debugw("login attempt", "email", *email)

	result, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.manager.Establish(ctx, result.Token, result.User); err != nil {
		return fmt.Errorf("login succeeded but session could not be stored: %w", err)
	}

	fmt.Printf("logged in as %s <%s>\n", result.User.Name, result.User.Email)
	return nil
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "client", "trainer or client")
	fs.Parse(args)

	user, err := a.auth.Register(ctx, *name, *email, *password, domain.Role(*role))
	if err != nil {
		return err
	}

	fmt.Printf("registered %s <%s>; now log in with: fitcoach login\n", user.Name, user.Email)
	return nil
}

func (a *cli) forgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	fs.Parse(args)

	if err := a.auth.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Println("if the account exists, a reset email is on its way")
	return nil
}

func (a *cli) appleLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apple-login", flag.ExitOnError)
	identityToken := fs.String("identity-token", "", "Apple identity token")
	firstName := fs.String("first-name", "", "first name for new accounts")
	lastName := fs.String("last-name", "", "last name for new accounts")
	role := fs.String("role", "client", "role for new accounts")
	fs.Parse(args)

	exists, err := a.auth.ApplePrecheck(ctx, *identityToken)
	if err != nil {
		return err
	}
	if !exists && *firstName == "" {
		fmt.Println("no account for this Apple ID yet; a new one will be created")
	}

	result, err := a.auth.AppleCallback(ctx, *identityToken, *firstName, *lastName, domain.Role(*role))
	if err != nil {
		return err
	}
	if err := a.manager.Establish(ctx, result.Token, result.User); err != nil {
		return fmt.Errorf("sign-in succeeded but session could not be stored: %w", err)
	}

	if result.IsNewUser {
		fmt.Printf("welcome, %s\n", result.User.Name)
	} else {
		fmt.Printf("welcome back, %s\n", result.User.Name)
	}
	return nil
}

func (a *cli) whoami() error {
	user := a.manager.User()
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	for _, role := range user.Roles {
		fmt.Printf("  role: %s\n", role)
	}
	if exp := a.manager.TokenExpiry(); !exp.IsZero() {
		fmt.Printf("  token expires: %s\n", exp.Format(time.RFC3339))
	}
	return nil
}

func (a *cli) exercises(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		list, err := a.trainer.ListExercises(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("no exercises in your library")
			return nil
		}
		for _, ex := range list {
			fmt.Printf("%s  %-24s %s\n", ex.ID, ex.Name, ex.MuscleGroup)
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("exercises add", flag.ExitOnError)
		name := fs.String("name", "", "exercise name")
		muscle := fs.String("muscle", "", "muscle group")
		desc := fs.String("desc", "", "description")
		fs.Parse(args[1:])

		created, err := a.trainer.CreateExercise(ctx, domain.Exercise{
			Name:        *name,
			MuscleGroup: *muscle,
			Description: *desc,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", created.Name, created.ID)
		return nil

	case "rm":
		fs := flag.NewFlagSet("exercises rm", flag.ExitOnError)
		id := fs.String("id", "", "exercise id")
		fs.Parse(args[1:])

		if err := a.trainer.DeleteExercise(ctx, *id); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil

	default:
		return fmt.Errorf("unknown exercises subcommand %q", args[0])
	}
}

func (a *cli) clients(ctx context.Context) error {
	list, err := a.trainer.ListClients(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no managed clients")
		return nil
	}
	for _, c := range list {
		fmt.Printf("%s  %s <%s>\n", c.ID, c.Name, c.Email)
	}
	return nil
}

func (a *cli) assign(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	clientID := fs.String("client", "", "client id")
	workoutName := fs.String("workout", "", "workout name")
	exerciseID := fs.String("exercise", "", "exercise id")
	sets := fs.Int("sets", 3, "sets")
	reps := fs.Int("reps", 10, "reps")
	weight := fs.String("weight", "0", "weight, e.g. 82.5")
	due := fs.String("due", "", "due date, e.g. 2026-01-15T00:00:00Z")
	fs.Parse(args)

	w, err := decimal.NewFromString(*weight)
	if err != nil {
		return fmt.Errorf("parse weight: %w", err)
	}

	dueDate := apitime.New(time.Now().AddDate(0, 0, 7))
	if *due != "" {
		dueDate, err = apitime.Parse(*due)
		if err != nil {
			return err
		}
	}

	assignment, err := a.trainer.AssignWorkout(ctx, *clientID, domain.Workout{
		Name: *workoutName,
		Items: []domain.WorkoutItem{{
			ExerciseID: *exerciseID,
			Sets:       *sets,
			Reps:       *reps,
			Weight:     w,
		}},
	}, dueDate)
	if err != nil {
		return err
	}

	fmt.Printf("assigned %q to client %s, due %s\n",
		assignment.Workout.Name, assignment.ClientID,
		assignment.DueDate.Format("2006-01-02"))
	return nil
}

func (a *cli) assignments(ctx context.Context) error {
	list, err := a.client.Assignments(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no assigned workouts")
		return nil
	}
	for _, as := range list {
		status := "open"
		if as.Completed {
			status = "done"
		}
		fmt.Printf("%s  %-20s due %s  [%s]\n",
			as.ID, as.Workout.Name, as.DueDate.Format("2006-01-02"), status)
	}
	return nil
}

func (a *cli) progress(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "log":
		fs := flag.NewFlagSet("progress log", flag.ExitOnError)
		assignmentID := fs.String("assignment", "", "assignment id")
		exerciseID := fs.String("exercise", "", "exercise id")
		sets := fs.Int("sets", 0, "sets completed")
		reps := fs.Int("reps", 0, "reps completed")
		weight := fs.String("weight", "0", "weight used")
		fs.Parse(args[1:])

		w, err := decimal.NewFromString(*weight)
		if err != nil {
			return fmt.Errorf("parse weight: %w", err)
		}

		entry, err := a.client.LogProgress(ctx, domain.ProgressEntry{
			AssignmentID: *assignmentID,
			ExerciseID:   *exerciseID,
			Sets:         *sets,
			Reps:         *reps,
			Weight:       w,
		})
		if err != nil {
			return err
		}
		fmt.Printf("logged %dx%d @ %s\n", entry.Sets, entry.Reps, entry.Weight)
		return nil

	case "show":
		fs := flag.NewFlagSet("progress show", flag.ExitOnError)
		since := fs.String("since", "", "only entries after this timestamp")
		fs.Parse(args[1:])

		var from time.Time
		if *since != "" {
			parsed, err := apitime.Parse(*since)
			if err != nil {
				return err
			}
			from = parsed.Time
		}

		entries, err := a.client.Progress(ctx, from)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no progress logged yet")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %dx%d @ %-8s %s\n",
				e.LoggedAt.Format("2006-01-02 15:04"), e.Sets, e.Reps, e.Weight, e.Notes)
		}
		return nil

	default:
		return fmt.Errorf("unknown progress subcommand %q", args[0])
	}
}
