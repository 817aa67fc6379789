package Models

import (
	"log"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// DefaultExchangeRate seeds the settings row on first run. Every later read
// goes through the persisted value.
var DefaultExchangeRate = decimal.NewFromInt(89000)

func Connect() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(path))
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	DB = connection

	// 1. Base entities with no dependencies
	DB.AutoMigrate(
		&User{},
		&Settings{},
		&Item{},
		&Customer{},
	)

	// 2. Entities referencing the base ones
	DB.AutoMigrate(
		&Invoice{},
		&InvoiceItem{},
		&Payment{}, // keyed to invoices by UUID
		&Reservation{},
		&ReservationItem{},
	)

	// 3. Entities referencing both invoices and reservations
	DB.AutoMigrate(&Withdrawal{})

	seedSettings()
}

// seedSettings makes sure the single settings row exists so the exchange
// rate is always readable.
func seedSettings() {
	var count int64
	if err := DB.Model(&Settings{}).Count(&count).Error; err != nil {
		log.Println(err)
		return
	}
	if count == 0 {
		if err := DB.Create(&Settings{USDToLBP: DefaultExchangeRate}).Error; err != nil {
			log.Println(err)
		}
	}
}
