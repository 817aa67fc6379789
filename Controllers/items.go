package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Mizan/Ledger"
	"Mizan/Models"
)

// ItemController handles catalog and stock endpoints
type ItemController struct {
	Ledger *Ledger.Service
}

func NewItemController(ledger *Ledger.Service) *ItemController {
	return &ItemController{Ledger: ledger}
}

func (c *ItemController) GetItems(ctx *fiber.Ctx) error {
	items, err := c.Ledger.ListItems()
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(items)
}

func (c *ItemController) GetItem(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	item, err := c.Ledger.GetItem(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(item)
}

type ItemInput struct {
	Name         string          `json:"name" validate:"required"`
	PurchaseUnit string          `json:"purchase_unit"`
	SellUnits    []string        `json:"sell_units"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Currency     string          `json:"currency" validate:"required,oneof=USD LBP"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func (c *ItemController) CreateItem(ctx *fiber.Ctx) error {
	var input ItemInput
	if !validateBody(ctx, &input) {
		return nil
	}

	item := Models.Item{
		Name:         input.Name,
		PurchaseUnit: input.PurchaseUnit,
		SellUnits:    input.SellUnits,
		BuyPrice:     input.BuyPrice,
		SellPrice:    input.SellPrice,
		Currency:     input.Currency,
		Quantity:     input.Quantity,
	}
	if err := c.Ledger.CreateItem(&item); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(item)
}

func (c *ItemController) UpdateItem(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	item, err := c.Ledger.GetItem(uint(id))
	if err != nil {
		return ledgerError(ctx, err)
	}

	var input ItemInput
	if !validateBody(ctx, &input) {
		return nil
	}

	item.Name = input.Name
	item.PurchaseUnit = input.PurchaseUnit
	item.SellUnits = input.SellUnits
	item.BuyPrice = input.BuyPrice
	item.SellPrice = input.SellPrice
	item.Currency = input.Currency
	item.Quantity = input.Quantity
	if err := c.Ledger.UpdateItem(item); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(item)
}

func (c *ItemController) DeleteItem(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	if err := c.Ledger.DeleteItem(uint(id)); err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Item deleted successfully"})
}

type AdjustQuantityInput struct {
	Delta         decimal.Decimal `json:"delta"`
	AllowNegative bool            `json:"allow_negative"`
}

// AdjustQuantity applies a manual stock delta. Negative deltas need
// allow_negative to pass once stock would go below zero.
func (c *ItemController) AdjustQuantity(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	var input AdjustQuantityInput
	if !validateBody(ctx, &input) {
		return nil
	}
	item, err := c.Ledger.AdjustQuantity(uint(id), input.Delta, input.AllowNegative)
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(item)
}

func (c *ItemController) GetExchangeRate(ctx *fiber.Ctx) error {
	rate, updatedAt, err := c.Ledger.GetExchangeRate()
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"usd_to_lbp": rate, "updated_at": updatedAt})
}

type SetExchangeRateInput struct {
	USDToLBP decimal.Decimal `json:"usd_to_lbp"`
}

func (c *ItemController) SetExchangeRate(ctx *fiber.Ctx) error {
	var input SetExchangeRateInput
	if !validateBody(ctx, &input) {
		return nil
	}
	if err := c.Ledger.SetExchangeRate(input.USDToLBP); err != nil {
		return ledgerError(ctx, err)
	}
	rate, updatedAt, err := c.Ledger.GetExchangeRate()
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"usd_to_lbp": rate, "updated_at": updatedAt})
}

func (c *ItemController) GetCapitalTotal(ctx *fiber.Ctx) error {
	total, err := c.Ledger.TotalCapital()
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"total_capital_lbp": total})
}

func (c *ItemController) GetSalesStats(ctx *fiber.Ctx) error {
	stats, err := c.Ledger.GetSalesStats(time.Now())
	if err != nil {
		return ledgerError(ctx, err)
	}
	return ctx.JSON(stats)
}
