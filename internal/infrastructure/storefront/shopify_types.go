package storefront

import "github.com/shopspring/decimal"

// Wire types for the Shopify Admin REST API. Prices travel as strings;
// decimal.Decimal marshals to a JSON number, so the conversion happens in
// the adapter, not in the types.

type shopifyProductRequest struct {
	Product shopifyProduct `json:"product"`
}

type shopifyProductResponse struct {
	Product shopifyProduct `json:"product"`
}

type shopifyProduct struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []shopifyVariant `json:"variants,omitempty"`
}

type shopifyVariant struct {
	ID                int64  `json:"id,omitempty"`
	Title             string `json:"title,omitempty"`
	SKU               string `json:"sku,omitempty"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price,omitempty"`
	Position          int    `json:"position,omitempty"`
	InventoryItemID   int64  `json:"inventory_item_id,omitempty"`
	InventoryQuantity int64  `json:"inventory_quantity,omitempty"`
}

type shopifyCollectRequest struct {
	Collect shopifyCollect `json:"collect"`
}

type shopifyCollect struct {
	ProductID    int64  `json:"product_id"`
	CollectionID string `json:"collection_id"`
}

type shopifyInventorySetRequest struct {
	LocationID      string `json:"location_id"`
	InventoryItemID int64  `json:"inventory_item_id"`
	Available       int64  `json:"available"`
}

type shopifyErrorResponse struct {
	Errors any `json:"errors"`
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
