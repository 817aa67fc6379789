package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Mizan/Ledger"
)

// InvoiceController handles invoice endpoints
type InvoiceController struct {
	Ledger *Ledger.Service
}

func NewInvoiceController(ledger *Ledger.Service) *InvoiceController {
	return &InvoiceController{Ledger: ledger}
}

type InvoiceLineRequest struct {
	ItemID       uint            `json:"item_id" validate:"required"`
	SellUnit     string          `json:"sell_unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
}

type CreateInvoiceRequest struct {
	CustomerID         uint                 `json:"customer_id" validate:"required"`
	Kind               string               `json:"kind" validate:"required,oneof=cash installment"`
	Date               string               `json:"date"`
	Address            string               `json:"address"`
	Lines              []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
	PaidAtCreation     decimal.Decimal      `json:"paid_at_creation"`
	AllowNegativeStock bool                 `json:"allow_negative_stock"`
}

func parseDate(ctx *fiber.Ctx, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid date format",
			"message": "Date must be in YYYY-MM-DD format",
		})
		return time.Time{}, false
	}
	return date, true
}

func toLineInputs(lines []InvoiceLineRequest) []Ledger.InvoiceLineInput {
	out := make([]Ledger.InvoiceLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, Ledger.InvoiceLineInput{
			ItemID:       line.ItemID,
			SellUnit:     line.SellUnit,
			Quantity:     line.Quantity,
			UnitPriceUSD: line.UnitPriceUSD,
		})
	}
	return out
}

func (c *InvoiceController) CreateInvoice(ctx *fiber.Ctx) error {
	var req CreateInvoiceRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	date, ok := parseDate(ctx, req.Date)
	if !ok {
		return nil
	}

	invoice, err := c.Ledger.CreateInvoice(Ledger.CreateInvoiceInput{
		CustomerID:         req.CustomerID,
		Kind:               req.Kind,
		Date:               date,
		Address:            req.Address,
		Lines:              toLineInputs(req.Lines),
		PaidAtCreation:     req.PaidAtCreation,
		AllowNegativeStock: req.AllowNegativeStock,
	})
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(invoice)
}

type EditInvoiceRequest struct {
	Date               string               `json:"date"`
	Address            string               `json:"address"`
	Lines              []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
	AllowNegativeStock bool                 `json:"allow_negative_stock"`
}

func (c *InvoiceController) UpdateInvoice(ctx *fiber.Ctx) error {
	var req EditInvoiceRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	date, ok := parseDate(ctx, req.Date)
	if !ok {
		return nil
	}

	invoice, err := c.Ledger.EditInvoice(ctx.Params("uuid"), Ledger.EditInvoiceInput{
		Date:               date,
		Address:            req.Address,
		Lines:              toLineInputs(req.Lines),
		AllowNegativeStock: req.AllowNegativeStock,
	})
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(invoice)
}

func (c *InvoiceController) GetInvoice(ctx *fiber.Ctx) error {
	invoice, err := c.Ledger.GetInvoice(ctx.Params("uuid"))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(invoice)
}

func (c *InvoiceController) DeleteInvoice(ctx *fiber.Ctx) error {
	if err := c.Ledger.DeleteInvoice(ctx.Params("uuid")); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Invoice deleted successfully"})
}

func (c *InvoiceController) GetCustomerInvoices(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	invoices, err := c.Ledger.ListInvoices(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(invoices)
}

// GetDisplayNumber resolves an invoice's position-derived display number.
// The number shifts when a sibling invoice is deleted; it is never cached.
func (c *InvoiceController) GetDisplayNumber(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}
	number, err := c.Ledger.ResolveDisplayNumber(uint(id), ctx.Params("uuid"))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"display_number": number})
}

func (c *InvoiceController) ConvertToCash(ctx *fiber.Ctx) error {
	invoice, err := c.Ledger.ConvertToCash(ctx.Params("uuid"))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(invoice)
}
