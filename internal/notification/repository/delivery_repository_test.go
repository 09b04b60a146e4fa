package repository_test

import (
	"context"
	"testing"
	"time"

	"teamtodo-backend/internal/notification/domain"
	"teamtodo-backend/internal/notification/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestDeliveryLogRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormDeliveryLogRepository(gormDB)

	entry := &domain.DeliveryLog{
		ID:        "d1",
		ProjectID: "p1",
		TaskID:    "t1",
		UserID:    "u1",
		Trigger:   domain.TriggerCreated,
		Outcome:   domain.OutcomeSent,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "delivery_logs"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), entry)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryLogRepository_FindByTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormDeliveryLogRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "project_id", "task_id", "user_id", "trigger", "outcome", "error", "created_at"}).
		AddRow("d2", "p1", "t1", "u2", "updated", "failed", "fcm token invalid", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)).
		AddRow("d1", "p1", "t1", "u1", "created", "sent", "", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(`SELECT \* FROM "delivery_logs" WHERE project_id = .* AND task_id = .* ORDER BY created_at DESC`).
		WillReturnRows(rows)

	logs, err := repo.FindByTask(context.Background(), "p1", "t1", 10)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.OutcomeFailed, logs[0].Outcome)
	assert.Equal(t, domain.TriggerCreated, logs[1].Trigger)
	assert.NoError(t, mock.ExpectationsWereMet())
}
