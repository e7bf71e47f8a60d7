package database

import (
	"strings"
	"time"

	"github.com/arnold/civic-tasks-api/internal/config"
	"github.com/arnold/civic-tasks-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// NowUTC is the clock GORM stamps created_at/updated_at with. Every time
// comparison in the services is done in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector

	// Use PostgreSQL if URL starts with postgres, otherwise SQLite
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: NowUTC,
	})
	if err != nil {
		return err
	}

	DB = db
	return nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Neighborhood{},
		&models.User{},
		&models.TaskTemplate{},
		&models.Task{},
		&models.UserTask{},
		&models.Submission{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
	)
}
