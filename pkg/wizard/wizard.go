package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/jobs"
	"github.com/iddaa-lens/laundry/pkg/logger"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

const scheduleHelp = `Now to set when this job will run.
- Leave blank to run only when 'laundry run [job]' is called.
- Enter a number to run after so many minutes. Entering 60 will run the job every hour.
- Enter a time to run at a certain time every day, like '9:30' or '13:00'.
- Enter the name of another job to run after that job runs.`

var errInvalidSchedule = errors.New("invalid schedule")

// Wizard creates, edits and destroys jobs interactively
type Wizard struct {
	scheduler *jobs.Scheduler
	catalog   *connectors.Catalog
	prompter  Prompter
	logger    *logger.Logger
}

func New(scheduler *jobs.Scheduler, prompter Prompter, log *logger.Logger) *Wizard {
	if log == nil {
		log = logger.Nop()
	}
	return &Wizard{
		scheduler: scheduler,
		catalog:   scheduler.Catalog(),
		prompter:  prompter,
		logger:    log,
	}
}

// Run creates the named job, or edits it when it already exists. The job is
// built on a copy and only saved once every question has been answered.
func (w *Wizard) Run(ctx context.Context, requested string) (*models.Job, error) {
	name := utils.SanitizeJobName(requested)
	if name == "" || name == utils.ReservedJobName {
		return nil, &jobs.ValidationError{Field: "name", Value: requested, Reason: "specify a name for the job"}
	}

	job, exists := w.scheduler.Get(name)
	if exists {
		w.prompter.Say("There's already a job called %s, so we'll edit it.", job.Name)
	} else {
		w.prompter.Say("Great, let's create a new job called %s.", name)
		job = &models.Job{Name: name, Schedule: models.Manual()}
	}

	for _, mode := range []models.Mode{models.ModeInput, models.ModeOutput} {
		if err := w.configure(ctx, job, mode); err != nil {
			return nil, err
		}
	}

	if err := w.askSchedule(ctx, job); err != nil {
		return nil, err
	}

	if err := w.scheduler.Upsert(ctx, job); err != nil {
		return nil, err
	}
	w.prompter.Say("Cool, the job %s is all set up!", job.Name)
	return job, nil
}

// configure binds a connector for mode and asks for its settings
func (w *Wizard) configure(ctx context.Context, job *models.Job, mode models.Mode) error {
	changed, err := w.chooseConnector(job, mode)
	if err != nil {
		return err
	}

	instance := job.Connector(mode)
	if changed {
		filled := jobs.Inherit(w.catalog, w.scheduler.Jobs(), job.Name, mode, instance)
		if len(filled) > 0 {
			w.logger.Debug().
				Str("action", "settings_inherited").
				Str("job_name", job.Name).
				Str("mode", string(mode)).
				Strs("settings", filled).
				Msg("Pre-filled settings from related jobs")
		}
	}

	return EnterFields(ctx, w.prompter, job, instance, w.catalog.Settings(instance.Type, mode))
}

// chooseConnector asks until a known connector is picked. It reports whether a
// different type was bound.
func (w *Wizard) chooseConnector(job *models.Job, mode models.Mode) (bool, error) {
	available := w.catalog.Selectable(mode)
	if len(available) == 0 {
		return false, fmt.Errorf("no connectors support %s", mode)
	}

	intro, question, confirm := "Now to decide where to launder data from. The sources we have are:",
		"Which source do you want to use?", "Cool, we'll start with %s."
	if mode == models.ModeOutput {
		intro, question, confirm = "Now to decide where to send data to. The options we have are:",
			"Which target do you want to use?", "Cool, we'll send it to %s."
	}

	var list strings.Builder
	options := make([]string, 0, len(available))
	for _, conn := range available {
		options = append(options, conn.Name())
		fmt.Fprintf(&list, "%s - %s\n", conn.Name(), w.catalog.Describe(conn.TypeID(), mode))
	}
	w.prompter.Say("%s\n%s", intro, list.String())

	current := job.Connector(mode)
	def := ""
	if current != nil {
		if conn, ok := w.catalog.Get(current.Type); ok {
			def = conn.Name()
		}
	}

	for {
		answer, err := w.prompter.Choose(question, options, def)
		if err != nil {
			return false, err
		}
		conn, ok := w.catalog.ByName(mode, utils.CleanString(answer))
		if !ok {
			w.prompter.Say("Hm, couldn't find that one. Try again?")
			continue
		}

		w.prompter.Say(confirm, conn.Name())
		if current != nil && current.Type == conn.TypeID() {
			return false, nil
		}
		job.SetConnector(mode, models.NewConnectorInstance(conn.TypeID()))
		return true, nil
	}
}

func (w *Wizard) askSchedule(ctx context.Context, job *models.Job) error {
	w.prompter.Say(scheduleHelp)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := w.prompter.Ask("How do you want the job to be scheduled?", job.Schedule.String())
		if err != nil {
			return err
		}

		schedule, err := w.parseSchedule(job, answer)
		var cycle *jobs.CyclicScheduleError
		switch {
		case errors.As(err, &cycle):
			w.prompter.Say("That would make a loop (%s). Try again?", strings.Join(cycle.Jobs, " -> "))
			continue
		case err != nil:
			w.prompter.Say(invalidAnswer)
			continue
		}

		job.Schedule = schedule
		switch schedule.Kind {
		case models.ScheduleInterval:
			w.prompter.Say("This job will run every %d minutes.", schedule.Minutes)
		case models.ScheduleDaily:
			w.prompter.Say("This job will run every day at %s.", schedule.String())
		case models.ScheduleAfter:
			w.prompter.Say("This job will run after the job %s.", schedule.After)
		default:
			w.prompter.Say("This job will only be run manually.")
		}
		return nil
	}
}

// parseSchedule accepts an after-job answer only when it names another
// existing job without closing a loop
func (w *Wizard) parseSchedule(job *models.Job, answer string) (models.Schedule, error) {
	schedule, err := models.ParseSchedule(utils.CleanString(answer))
	if err != nil {
		return models.Schedule{}, errInvalidSchedule
	}
	if schedule.Kind != models.ScheduleAfter {
		return schedule, nil
	}

	if job.Is(schedule.After) {
		return models.Schedule{}, errInvalidSchedule
	}
	target, ok := w.scheduler.Get(schedule.After)
	if !ok {
		return models.Schedule{}, errInvalidSchedule
	}
	schedule.After = target.Name

	if err := jobs.CheckChain(w.scheduler.Jobs(), job.Name, schedule); err != nil {
		return models.Schedule{}, err
	}
	return schedule, nil
}

// Destroy asks the user to retype the job name and removes the job when it matches.
// It reports whether the job was destroyed.
func (w *Wizard) Destroy(ctx context.Context, requested string) (bool, error) {
	job, ok := w.scheduler.Get(requested)
	if !ok {
		return false, &jobs.NotFoundError{Name: requested}
	}

	answer, err := w.prompter.Ask(fmt.Sprintf("Are you sure you want to destroy the job %s? Enter the job name again to confirm.", job.Name), "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(utils.CleanString(answer))
	if answer != strings.ToLower(job.Name) {
		w.prompter.Say("Job %s saved.", job.Name)
		return false, nil
	}

	if err := w.scheduler.Delete(ctx, job.Name); err != nil {
		return false, err
	}
	w.prompter.Say("Job %s destroyed.", job.Name)
	return true, nil
}
