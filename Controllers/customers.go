package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"Mizan/Ledger"
)

// CustomerController handles customer and rollup endpoints
type CustomerController struct {
	Ledger *Ledger.Service
}

func NewCustomerController(ledger *Ledger.Service) *CustomerController {
	return &CustomerController{Ledger: ledger}
}

func (c *CustomerController) GetCustomers(ctx *fiber.Ctx) error {
	customers, err := c.Ledger.ListCustomers(ctx.Query("search"))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(customers)
}

func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	customer, err := c.Ledger.GetCustomer(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(customer)
}

type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address"`
}

func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	var input CustomerInput
	if !validateBody(ctx, &input) {
		return nil
	}
	customer, err := c.Ledger.CreateCustomer(input.Name, input.Phone, input.Address)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(customer)
}

// DeleteCustomer cascades through the ledger so the customer's invoices
// restock and their payments disappear with them.
func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	if err := c.Ledger.DeleteCustomer(uint(id)); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Customer deleted successfully"})
}

func (c *CustomerController) GetBalance(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	paid, remaining, err := c.Ledger.GetBalance(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"customer_id":     id,
		"total_paid":      paid,
		"total_remaining": remaining,
	})
}
