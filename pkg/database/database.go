package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"golang.org/x/crypto/bcrypt"

	"movie-watchlist/pkg/models"
)

// AdminUsername is the fixed fallback owner whose watchlist is shown to
// anonymous visitors.
const AdminUsername = "admin"

const adminSeedPassword = "123"

// The demo watchlist installed for the admin account on first boot.
var seedMovies = []models.Movie{
	{Title: "喜剧之王", Year: "1999"},
	{Title: "食神", Year: "1996"},
	{Title: "2046", Year: "2004"},
	{Title: "重庆森林", Year: "1994"},
	{Title: "旺角卡门", Year: "1988"},
}

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Movie{}).Error; err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// Seed makes sure the admin account exists and, if its watchlist is empty,
// installs the demo movies. Safe to run on every boot.
func Seed(db *gorm.DB) error {
	var admin models.User
	err := db.Where("username = ?", AdminUsername).First(&admin).Error
	if gorm.IsRecordNotFoundError(err) {
		hash, herr := bcrypt.GenerateFromPassword([]byte(adminSeedPassword), bcrypt.DefaultCost)
		if herr != nil {
			return fmt.Errorf("hash admin password: %w", herr)
		}
		admin = models.User{
			Name:         "Admin",
			Username:     AdminUsername,
			PasswordHash: string(hash),
			Group:        models.GroupAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}

	var count int
	if err := db.Model(&models.Movie{}).Where("belongs_to = ?", AdminUsername).Count(&count).Error; err != nil {
		return fmt.Errorf("count admin movies: %w", err)
	}
	if count > 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range seedMovies {
			m.BelongsTo = AdminUsername
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("seed movie %q: %w", m.Title, err)
			}
		}
		return nil
	})
}
