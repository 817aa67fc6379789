package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"Mizan/Ledger"
)

// ledgerError maps the ledger's typed errors onto HTTP statuses. Soft
// rejections the caller may override (insufficient stock) and hard invariant
// rejections both surface the message; nothing is swallowed.
func ledgerError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	label := "Internal error"

	switch {
	case errors.Is(err, Ledger.ErrNotFound):
		status, label = fiber.StatusNotFound, "Not found"
	case errors.Is(err, Ledger.ErrValidation):
		status, label = fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, Ledger.ErrInsufficientStock):
		status, label = fiber.StatusConflict, "Insufficient stock"
	case errors.Is(err, Ledger.ErrOverpayment),
		errors.Is(err, Ledger.ErrOverpaymentAtCreation):
		status, label = fiber.StatusConflict, "Overpayment"
	case errors.Is(err, Ledger.ErrExceedsAvailable):
		status, label = fiber.StatusConflict, "Exceeds available quantity"
	case errors.Is(err, Ledger.ErrNotInstallment):
		status, label = fiber.StatusConflict, "Not an installment invoice"
	case errors.Is(err, Ledger.ErrDuplicatePayment):
		status, label = fiber.StatusConflict, "Duplicate payment"
	}

	body := fiber.Map{"error": label, "message": err.Error()}
	var fieldErr *Ledger.FieldError
	if errors.As(err, &fieldErr) {
		body["field"] = fieldErr.Field
	}
	return ctx.Status(status).JSON(body)
}
