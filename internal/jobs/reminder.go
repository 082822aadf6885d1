package jobs

import (
	"context"
	"fmt"
	"time"
	"tutorhub/config"
	"tutorhub/infras/otel"
	"tutorhub/shared/constant"
	"tutorhub/shared/timezone"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const sweepTimeout = 50 * time.Second

// ReminderSender is the part of the booking service the sweep drives.
type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// Reminder runs the session reminder sweep on a cron schedule.
type Reminder struct {
	cron     *cron.Cron
	sender   ReminderSender
	clock    timezone.Clock
	otel     otel.Otel
	schedule string
	enable   bool
}

func NewReminder(cfg *config.Config, sender ReminderSender, clock timezone.Clock, otel otel.Otel) *Reminder {
	return &Reminder{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sender:   sender,
		clock:    clock,
		otel:     otel,
		schedule: cfg.Reminder.Schedule,
		enable:   cfg.Reminder.Enable,
	}
}

// Start schedules the sweep. It does nothing when reminders are disabled.
func (r *Reminder) Start() error {
	if !r.enable {
		log.Warn().Msg("Session reminders disabled")

		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() { _, _ = r.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()

	log.Info().Str("schedule", r.schedule).Msg("Session reminder job scheduled")

	return nil
}

// Stop waits for a running sweep to finish.
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}

// Run performs one sweep at the current time.
func (r *Reminder) Run(ctx context.Context) (sent int, err error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	ctx, scope := r.otel.NewScope(ctx, constant.OtelJobScopeName, constant.OtelJobScopeName+".Reminder")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	sent, err = r.sender.SendReminders(ctx, r.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("reminder sweep failed")

		return sent, err
	}

	if sent > 0 {
		log.Info().Int("sent", sent).Msg("reminder sweep completed")
	}

	return sent, nil
}
