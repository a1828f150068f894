// Package cli реализует консольный клиент фитнес-трекера.
//
// Поверх сессии и API-клиента работает простой REPL: пока пользователь не
// вошел, тренировки сохраняются локально в анонимном режиме; после входа
// команды работают с сервером.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/fitness-tracker/internal/client"
	"github.com/magabrotheeeer/fitness-tracker/internal/client/session"
	"github.com/magabrotheeeer/fitness-tracker/internal/models"
)

// App связывает REPL с сессией клиента.
type App struct {
	session *session.Session
	api     *client.Client
	reader  *bufio.Reader
	out     io.Writer

	user *models.User
}

// NewApp создает консольное приложение поверх готовой сессии.
func NewApp(sess *session.Session, api *client.Client, in io.Reader, out io.Writer) *App {
	app := &App{
		session: sess,
		api:     api,
		reader:  bufio.NewReader(in),
		out:     out,
	}
	sess.OnAuthChange(func(user *models.User) {
		app.user = user
	})
	return app
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) status() string {
	if a.user == nil {
		return "anonymous"
	}
	return a.user.Email
}

func (a *App) prompt(label string) (string, error) {
	if _, err := fmt.Fprint(a.out, label+"\n> "); err != nil {
		return "", err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Run сверяет сохраненный токен с сервером и запускает REPL.
// Возвращается при EOF или команде exit.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.session.Reconcile(ctx); err != nil {
		return fmt.Errorf("session reconcile: %w", err)
	}

	for {
		fmt.Fprintf(a.out, "ft> %s > ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: add, list, stats, settings, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, add, list, exit")
			}
		case "register":
			a.report(a.register(ctx))
		case "login":
			a.report(a.login(ctx))
		case "logout":
			a.report(a.session.Logout())
		case "add":
			a.report(a.addWorkout(ctx))
		case "list":
			a.report(a.listWorkouts(ctx))
		case "stats":
			a.report(a.showStats(ctx))
		case "settings":
			a.report(a.updateSettings(ctx))
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return nil
		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}

func (a *App) report(err error) {
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
	}
}

func (a *App) register(ctx context.Context) error {
	name, err := a.prompt("Name")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.prompt("Password")
	if err != nil {
		return err
	}

	user, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.prompt("Password")
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Name)
	return nil
}

func (a *App) readWorkout() (*models.DummyWorkout, error) {
	date, err := a.prompt("Date (2006-01-02, empty for today)")
	if err != nil {
		return nil, err
	}
	workoutType, err := a.prompt("Type (strength, weightlifting, bodyweight)")
	if err != nil {
		return nil, err
	}
	rawDuration, err := a.prompt("Duration, minutes")
	if err != nil {
		return nil, err
	}
	duration, err := strconv.Atoi(rawDuration)
	if err != nil {
		return nil, fmt.Errorf("duration must be a number")
	}
	rawCalories, err := a.prompt("Calories (empty for 0)")
	if err != nil {
		return nil, err
	}
	calories := 0
	if rawCalories != "" {
		calories, err = strconv.Atoi(rawCalories)
		if err != nil {
			return nil, fmt.Errorf("calories must be a number")
		}
	}
	notes, err := a.prompt("Notes")
	if err != nil {
		return nil, err
	}

	workout := &models.DummyWorkout{
		Date:     date,
		Type:     workoutType,
		Duration: duration,
		Calories: calories,
	}
	if notes != "" {
		workout.Notes = &notes
	}
	return workout, nil
}

func (a *App) addWorkout(ctx context.Context) error {
	workout, err := a.readWorkout()
	if err != nil {
		return err
	}

	if !a.isLoggedIn() {
		local, err := a.session.AppendAnonymousWorkout(*workout)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved locally as %s (login to sync new workouts to the server)\n", local.ID)
		return nil
	}

	created, err := a.api.CreateWorkout(ctx, *workout)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Workout #%d saved\n", created.ID)
	return nil
}

func (a *App) listWorkouts(ctx context.Context) error {
	if !a.isLoggedIn() {
		workouts, err := a.session.AnonymousWorkouts()
		if err != nil {
			return err
		}
		if len(workouts) == 0 {
			fmt.Fprintln(a.out, "No local workouts yet")
			return nil
		}
		for _, w := range workouts {
			fmt.Fprintf(a.out, "%s  %s  %s  %d min\n", w.ID, w.Workout.Date, w.Workout.Type, w.Workout.Duration)
		}
		return nil
	}

	workouts, err := a.api.ListWorkouts(ctx, 20, 0)
	if err != nil {
		return err
	}
	if len(workouts) == 0 {
		fmt.Fprintln(a.out, "No workouts yet")
		return nil
	}
	for _, w := range workouts {
		fmt.Fprintf(a.out, "#%d  %s  %s  %d min  %d kcal\n",
			w.ID, w.Date.Format("2006-01-02"), w.Type, w.Duration, w.Calories)
	}
	return nil
}

func (a *App) showStats(ctx context.Context) error {
	if !a.isLoggedIn() {
		return fmt.Errorf("login to see statistics")
	}

	stats, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Workouts: %d, total %d min, %d kcal\n",
		stats.TotalWorkouts, stats.TotalDuration, stats.TotalCalories)
	for workoutType, count := range stats.ByType {
		fmt.Fprintf(a.out, "  %s: %d\n", workoutType, count)
	}
	return nil
}

func (a *App) updateSettings(ctx context.Context) error {
	if !a.isLoggedIn() {
		return fmt.Errorf("login to change settings")
	}

	theme, err := a.prompt("Theme (light, dark, empty to keep)")
	if err != nil {
		return err
	}
	language, err := a.prompt("Language (en, ru, empty to keep)")
	if err != nil {
		return err
	}

	var upd models.SettingsUpdate
	if theme != "" {
		upd.Theme = &theme
	}
	if language != "" {
		upd.Language = &language
	}

	settings, err := a.api.UpdateSettings(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Theme: %s, language: %s, units: %s\n",
		settings.Theme, settings.Language, settings.Units)
	return nil
}
