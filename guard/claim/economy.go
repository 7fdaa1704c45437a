package claim

import "time"

// EconomyData holds the fields an economy or tax add-on hangs off a region.
// The core does not interpret these values; it only stores them and persists
// them with the region.
type EconomyData struct {
	// TaxBalance is the amount of tax currently owed on the region.
	TaxBalance float64 `json:"tax_balance"`
	// SalePrice is the price the region is offered at while ForSale is true.
	SalePrice float64 `json:"sale_price"`
	// ForSale marks the region as purchasable.
	ForSale bool `json:"for_sale"`
	// PastDue is the date at which unpaid tax became overdue. The zero time
	// means the region is not past due.
	PastDue time.Time `json:"past_due"`
	// Expired may be set by a tax task to mark the region for removal by the
	// expiration sweep regardless of activity.
	Expired bool `json:"expired"`
}
