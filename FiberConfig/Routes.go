package FiberConfig

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"Mizan/Controllers"
	"Mizan/Ledger"
	"Mizan/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	ledger := Ledger.New(db)
	itemController := Controllers.NewItemController(ledger)
	customerController := Controllers.NewCustomerController(ledger)
	invoiceController := Controllers.NewInvoiceController(ledger)
	paymentController := Controllers.NewPaymentController(ledger)
	reservationController := Controllers.NewReservationController(ledger)

	// Auth routes
	app.Post("/api/Login", Controllers.Login)
	app.Post("/api/Logout", Controllers.Logout)
	app.Get("/api/validate-token", Controllers.ValidateToken)
	app.Post("/api/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)
	app.Patch("/api/UpdateUser", middleware.Verify(4), Controllers.UpdateUser)
	app.Get("/api/FetchUsers", middleware.Verify(4), Controllers.FetchUsers)
	app.Delete("/api/DeleteUser/:id", middleware.Verify(4), Controllers.DeleteUser)

	// API group
	api := app.Group("/api")

	// Item and stock routes
	items := api.Group("/items", middleware.Verify(1))
	items.Get("/", itemController.GetItems)
	items.Post("/", middleware.Verify(3), itemController.CreateItem)
	items.Get("/:id", itemController.GetItem)
	items.Put("/:id", middleware.Verify(3), itemController.UpdateItem)
	items.Delete("/:id", middleware.Verify(3), itemController.DeleteItem)
	items.Post("/:id/adjust-quantity", middleware.Verify(3), itemController.AdjustQuantity)

	// Exchange rate: changing it triggers the recompute pass over capital
	// values and open installment invoices' LBP presentation
	api.Get("/exchange-rate", middleware.Verify(1), itemController.GetExchangeRate)
	api.Put("/exchange-rate", middleware.Verify(3), itemController.SetExchangeRate)

	// Customer routes
	customers := api.Group("/customers", middleware.Verify(1))
	customers.Get("/", customerController.GetCustomers)
	customers.Post("/", middleware.Verify(3), customerController.CreateCustomer)
	customers.Get("/:id", customerController.GetCustomer)
	customers.Delete("/:id", middleware.Verify(3), customerController.DeleteCustomer)
	customers.Get("/:id/balance", customerController.GetBalance)
	customers.Get("/:id/invoices", invoiceController.GetCustomerInvoices)
	customers.Get("/:id/invoices/:uuid/display-number", invoiceController.GetDisplayNumber)

	// Invoice routes
	invoices := api.Group("/invoices", middleware.Verify(1))
	invoices.Post("/", middleware.Verify(3), invoiceController.CreateInvoice)
	invoices.Get("/:uuid", invoiceController.GetInvoice)
	invoices.Put("/:uuid", middleware.Verify(3), invoiceController.UpdateInvoice)
	invoices.Delete("/:uuid", middleware.Verify(3), invoiceController.DeleteInvoice)
	invoices.Post("/:uuid/convert-to-cash", middleware.Verify(3), invoiceController.ConvertToCash)
	invoices.Get("/:uuid/payments", paymentController.GetInvoicePayments)

	// Payment routes
	payments := api.Group("/payments", middleware.Verify(3))
	payments.Post("/", paymentController.ApplyPayment)
	payments.Delete("/:uuid", paymentController.RemovePayment)

	// Reservation and withdrawal routes
	reservations := api.Group("/reservations", middleware.Verify(1))
	reservations.Get("/", reservationController.GetReservations)
	reservations.Get("/balance", reservationController.GetReservationBalance)
	reservations.Post("/", middleware.Verify(3), reservationController.CreateReservation)
	reservations.Delete("/:id", middleware.Verify(3), reservationController.DeleteReservation)
	reservations.Put("/lines/:id", middleware.Verify(3), reservationController.UpdateReservationLine)

	withdrawals := api.Group("/withdrawals", middleware.Verify(3))
	withdrawals.Post("/", reservationController.Withdraw)
	withdrawals.Delete("/:uuid", reservationController.ReverseWithdrawal)

	// Stats routes
	stats := api.Group("/stats", middleware.Verify(1))
	stats.Get("/sales", itemController.GetSalesStats)
	stats.Get("/capital", itemController.GetCapitalTotal)
}

func NewApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300, // Max age for preflight requests caching (5 minutes)
	}))

	SetupRoutes(app, db)
	return app
}

func FiberConfig(db *gorm.DB) {
	fmt.Println("Server Up...")
	app := NewApp(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	app.Listen(":" + port)
}
