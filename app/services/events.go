package services

import "github.com/shashiranjanraj/sweetshop/app/models"

// Domain event names.
const (
	EventPurchased    = "inventory.purchased"
	EventRestocked    = "inventory.restocked"
	EventLowStock     = "inventory.low_stock"
	EventSweetCreated = "sweet.created"
	EventSweetUpdated = "sweet.updated"
	EventSweetDeleted = "sweet.deleted"
)

// StockChange is the payload of inventory events. Sweet holds the state
// after the change.
type StockChange struct {
	Sweet    models.Sweet `json:"sweet"`
	Quantity int          `json:"quantity"`
}

// SweetDeleted is the payload of sweet.deleted.
type SweetDeleted struct {
	ID string `json:"_id"`
}
