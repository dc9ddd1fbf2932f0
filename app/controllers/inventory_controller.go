package controllers

import (
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
)

type InventoryController struct {
	inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

// quantityBody keeps the raw number so 1.5 is rejected rather than truncated.
// "5" is accepted as 5.
type quantityBody struct {
	Quantity *services.Number `json:"quantity"`
}

func (ic *InventoryController) quantity(c *ctx.Context) (int, bool) {
	var body quantityBody
	if !decodeOptional(c, &body) {
		return 0, false
	}
	n, err := services.ParseQuantity(body.Quantity)
	if err != nil {
		c.Fail(err)
		return 0, false
	}
	return n, true
}

func (ic *InventoryController) Purchase(c *ctx.Context) {
	n, ok := ic.quantity(c)
	if !ok {
		return
	}
	sweet, err := ic.inventory.Purchase(c.Context(), c.Param("id"), n)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("Purchase successful", response.Payload{"sweet": sweet})
}

func (ic *InventoryController) Restock(c *ctx.Context) {
	n, ok := ic.quantity(c)
	if !ok {
		return
	}
	sweet, err := ic.inventory.Restock(c.Context(), c.Param("id"), n)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK("Restock successful", response.Payload{"sweet": sweet})
}
