package migrations

import (
	"fmt"

	"github.com/SapotaDA/TaskFlow/internal/domain/activity"
	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/internal/domain/task"
	"github.com/SapotaDA/TaskFlow/internal/domain/user"
	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

// RunMigrations applies the schema for every domain model
func RunMigrations(db *connection.Database, log *logger.Logger) error {
	log.Info("Running database migrations")

	if err := db.AutoMigrate(
		&user.User{},
		&task.Task{},
		&notification.Notification{},
		&activity.Activity{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}
