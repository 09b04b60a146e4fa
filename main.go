package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "teamtodo-backend/cmd/api"
	authRepo "teamtodo-backend/internal/auth/repository"
	authUsecase "teamtodo-backend/internal/auth/usecase"
	"teamtodo-backend/internal/notification"
	notifdomain "teamtodo-backend/internal/notification/domain"
	notifRepo "teamtodo-backend/internal/notification/repository"
	taskRepo "teamtodo-backend/internal/task/repository"
	taskUsecase "teamtodo-backend/internal/task/usecase"
	"teamtodo-backend/pkg/config"
	"teamtodo-backend/pkg/database"
	"teamtodo-backend/pkg/fcm"
	"teamtodo-backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase (Auth, Firestore, FCM share one app)
	app, err := firebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize Firebase:", err)
	}

	store, err := firebase.NewFirestore(ctx, app, cfg.GoogleProjectID, cfg.FirestoreDatabase, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal("Failed to initialize Firestore:", err)
	}
	defer store.Close()

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firebase Auth:", err)
	}

	fcmClient, err := fcm.NewClient(ctx, app)
	if err != nil {
		log.Fatal("Failed to initialize FCM client:", err)
	}

	// Delivery audit log is optional
	var deliveryRepo notifRepo.DeliveryLogRepository
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := db.AutoMigrate(&notifdomain.DeliveryLog{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		deliveryRepo = notifRepo.NewGormDeliveryLogRepository(db)
	} else {
		log.Printf("[WARN] DATABASE_URL not configured, delivery audit log disabled")
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(store)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(store)
	tasks := taskRepo.NewFirestoreTaskRepository(store)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(authClient, userRepo, fcmTokenRepo)
	taskUsecaseInstance := taskUsecase.NewTaskUsecase(tasks)

	notifService := notification.NewService(userRepo, fcmClient, deliveryRepo, cfg.NotifyLocale)

	// Pub/Sub intake runs alongside the HTTP endpoint when a subscription is configured
	if cfg.TaskEventsSubscription != "" {
		listener, err := notification.NewListener(ctx, cfg.GoogleProjectID, cfg.TaskEventsSubscription, cfg.FirebaseCredentials, notifService)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize task event listener: %v", err)
		} else {
			defer listener.Close()
			go listener.Start(ctx)
		}
	} else {
		log.Printf("[WARN] TASK_EVENTS_SUBSCRIPTION not configured, Pub/Sub intake disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, taskUsecaseInstance, notifService)

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := handler.Start(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
}
