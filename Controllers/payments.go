package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Mizan/Ledger"
)

// PaymentController handles payment endpoints
type PaymentController struct {
	Ledger *Ledger.Service
}

func NewPaymentController(ledger *Ledger.Service) *PaymentController {
	return &PaymentController{Ledger: ledger}
}

type ApplyPaymentRequest struct {
	InvoiceUUID string          `json:"invoice_uuid" validate:"required,uuid4"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	Date        string          `json:"date"`
	// PaymentUUID lets the client pin the payment identity so a resubmitted
	// request is rejected instead of double-applied.
	PaymentUUID string `json:"payment_uuid" validate:"omitempty,uuid4"`
}

func (c *PaymentController) ApplyPayment(ctx *fiber.Ctx) error {
	var req ApplyPaymentRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	date, ok := parseDate(ctx, req.Date)
	if !ok {
		return nil
	}

	payment, err := c.Ledger.ApplyPayment(req.InvoiceUUID, req.AmountUSD, date, req.PaymentUUID)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

func (c *PaymentController) RemovePayment(ctx *fiber.Ctx) error {
	if err := c.Ledger.RemovePayment(ctx.Params("uuid")); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Payment deleted successfully"})
}

func (c *PaymentController) GetInvoicePayments(ctx *fiber.Ctx) error {
	payments, err := c.Ledger.ListPayments(ctx.Params("uuid"))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(payments)
}
