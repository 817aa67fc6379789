package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Mizan/Ledger"
)

// ReservationController handles reservation and withdrawal endpoints
type ReservationController struct {
	Ledger *Ledger.Service
}

func NewReservationController(ledger *Ledger.Service) *ReservationController {
	return &ReservationController{Ledger: ledger}
}

type ReservationLineRequest struct {
	ItemID       uint            `json:"item_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
}

type CreateReservationRequest struct {
	CustomerName string                   `json:"customer_name" validate:"required"`
	Date         string                   `json:"date"`
	Lines        []ReservationLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (c *ReservationController) CreateReservation(ctx *fiber.Ctx) error {
	var req CreateReservationRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	date, ok := parseDate(ctx, req.Date)
	if !ok {
		return nil
	}

	lines := make([]Ledger.ReservationLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, Ledger.ReservationLineInput{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			UnitPriceUSD: line.UnitPriceUSD,
		})
	}

	reservation, err := c.Ledger.CreateReservation(req.CustomerName, date, lines)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(reservation)
}

func (c *ReservationController) GetReservations(ctx *fiber.Ctx) error {
	customer := ctx.Query("customer")
	if customer == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customer query parameter is required"})
	}
	reservations, err := c.Ledger.ListReservations(customer)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(reservations)
}

func (c *ReservationController) GetReservationBalance(ctx *fiber.Ctx) error {
	customer := ctx.Query("customer")
	if customer == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customer query parameter is required"})
	}
	balance, err := c.Ledger.ReservationBalance(customer)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"customer_name": customer, "remaining_usd": balance})
}

func (c *ReservationController) DeleteReservation(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation ID"})
	}
	if err := c.Ledger.DeleteReservation(uint(id)); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Reservation deleted successfully"})
}

type EditReservationLineRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func (c *ReservationController) UpdateReservationLine(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reservation line ID"})
	}
	var req EditReservationLineRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	line, err := c.Ledger.EditReservationLine(uint(id), req.Quantity)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(line)
}

type WithdrawRequest struct {
	ReservationItemID  uint            `json:"reservation_item_id" validate:"required"`
	Quantity           decimal.Decimal `json:"quantity"`
	SellUnit           string          `json:"sell_unit"`
	Date               string          `json:"date"`
	CustomerID         uint            `json:"customer_id"`
	AllowNegativeStock bool            `json:"allow_negative_stock"`
}

func (c *ReservationController) Withdraw(ctx *fiber.Ctx) error {
	var req WithdrawRequest
	if !validateBody(ctx, &req) {
		return nil
	}
	date, ok := parseDate(ctx, req.Date)
	if !ok {
		return nil
	}

	withdrawal, err := c.Ledger.Withdraw(Ledger.WithdrawInput{
		ReservationItemID:  req.ReservationItemID,
		Quantity:           req.Quantity,
		SellUnit:           req.SellUnit,
		Date:               date,
		CustomerID:         req.CustomerID,
		AllowNegativeStock: req.AllowNegativeStock,
	})
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(withdrawal)
}

func (c *ReservationController) ReverseWithdrawal(ctx *fiber.Ctx) error {
	if err := c.Ledger.ReverseWithdrawal(ctx.Params("uuid")); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Withdrawal reversed successfully"})
}
