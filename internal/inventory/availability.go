package inventory

// Availability is the derived stock position for one inventory item. It is
// computed on read and never persisted.
type Availability struct {
	Stocks     int `json:"stocks"`
	SoldStocks int `json:"sold_stocks"`
	PendingQty int `json:"pending_qty"`
	Available  int `json:"available"`
}

// ComputeAvailability derives the sellable quantity. Pending reservations
// hold units; confirmed and cancelled ones do not. The result can go
// negative and is reported as-is so oversold rows stay visible.
func ComputeAvailability(stocks, soldStocks, pendingQty int) Availability {
	return Availability{
		Stocks:     stocks,
		SoldStocks: soldStocks,
		PendingQty: pendingQty,
		Available:  stocks - soldStocks - pendingQty,
	}
}
