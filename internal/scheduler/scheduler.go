package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultReminderHour is the UTC hour of the daily reminder
const DefaultReminderHour = 18

// Notifier sends study reminders to learners who have not studied today
type Notifier interface {
	SendReminders() error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	hour      int
	log       *slog.Logger
}

// New creates a new scheduler firing the daily reminder at hour (UTC)
func New(notifier Notifier, hour int, logger *slog.Logger) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = DefaultReminderHour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		hour:      hour,
		log:       logger,
	}
}

// Start schedules the daily reminder and runs the scheduler in the background
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.sendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("reminder scheduler started", "at", at+" UTC")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun returns when the reminder fires next; zero before Start
func (s *Scheduler) NextRun() time.Time {
	jobs := s.scheduler.Jobs()
	if len(jobs) == 0 {
		return time.Time{}
	}
	return jobs[0].NextRun()
}

// RunNow sends reminders immediately
func (s *Scheduler) RunNow() error {
	return s.notifier.SendReminders()
}

func (s *Scheduler) sendReminders() {
	if err := s.notifier.SendReminders(); err != nil {
		s.log.Error("failed to send reminders", "error", err)
	}
}
