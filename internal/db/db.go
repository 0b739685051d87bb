package db

import (
	"fmt"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/models"
)

// Connect opens the relational store. TranslateError is on so that
// duplicate-key violations surface as gorm.ErrDuplicatedKey on both drivers.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = gormsqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Companion{},
		&models.Conversation{},
		&history.Entry{},
		&chat.Job{},
	)
}
