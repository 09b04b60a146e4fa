// Command reminderd keeps local due-date reminders for one signed-in user in
// step with the tasks assigned to them.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"teamtodo-backend/internal/reminder"
	taskRepo "teamtodo-backend/internal/task/repository"
	"teamtodo-backend/pkg/config"
	"teamtodo-backend/pkg/firebase"
	"teamtodo-backend/pkg/localnotify"

	"github.com/spf13/pflag"
)

func main() {
	cfg := config.Load()

	userID := pflag.String("user", cfg.ReminderUserID, "user whose assigned tasks are reminded")
	statePath := pflag.String("state", cfg.ReminderStateFile, "local scheduler state file")
	settingsPath := pflag.String("settings", cfg.ReminderSettingsFile, "reminder settings file (JSON with comments)")
	once := pflag.Bool("once", false, "reconcile once against the current task list and exit")
	pflag.Parse()

	if *userID == "" {
		log.Fatal("--user or REMINDER_USER_ID is required")
	}

	defaults := reminder.DefaultPolicy()
	defaults.LeadTime = cfg.ReminderLeadTime
	policy, locale, err := reminder.LoadSettings(*settingsPath, defaults, cfg.NotifyLocale)
	if err != nil {
		log.Fatal("Failed to load reminder settings:", err)
	}
	log.Printf("[Reminder] Policy: mode=%s lead=%s daily=%v locale=%s", policy.Mode, policy.LeadTime, policy.DailyTimes, locale)

	scheduler, err := localnotify.NewFileScheduler(*statePath)
	if err != nil {
		log.Fatal("Failed to open scheduler state:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := firebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize Firebase:", err)
	}
	store, err := firebase.NewFirestore(ctx, app, cfg.GoogleProjectID, cfg.FirestoreDatabase, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize Firestore:", err)
	}
	defer store.Close()

	tasks := taskRepo.NewFirestoreTaskRepository(store)
	runner := reminder.NewRunner(reminder.NewReconciler(scheduler, policy, locale), cfg.ReminderResyncInterval)

	if *once {
		assigned, err := tasks.ListAssigned(ctx, *userID)
		if err != nil {
			log.Fatal("Failed to list assigned tasks:", err)
		}
		res, err := runner.RunOnce(ctx, assigned)
		if err != nil {
			log.Fatal("Reconciliation failed:", err)
		}
		log.Printf("[Reminder] Reconciled %d tasks: %s", len(assigned), res)
		return
	}

	dispatcher := localnotify.NewDispatcher(scheduler, localnotify.LogSink{}, cfg.ReminderDispatchSpec)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal("Failed to start dispatcher:", err)
	}
	defer dispatcher.Stop()

	sub, err := tasks.ListenAssigned(ctx, *userID, runner.Submit)
	if err != nil {
		log.Fatal("Failed to listen for assigned tasks:", err)
	}
	defer sub.Stop()

	// a failed listener would leave the runner reconciling a frozen task list
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	go func() {
		select {
		case <-sub.Done():
			cancelRun()
		case <-runCtx.Done():
		}
	}()

	log.Printf("[Reminder] Watching tasks assigned to %s (state: %s)", *userID, *statePath)
	runner.Run(runCtx)

	if err := sub.Err(); err != nil {
		dispatcher.Stop()
		log.Fatal("Assigned task listener failed:", err)
	}
}
