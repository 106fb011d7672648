package domain

// StoreInfo describes the physical shop
type StoreInfo struct {
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Hours          string  `json:"hours"`
	ContactNumber  string  `json:"contactNumber"`
	GoogleMapsLink string  `json:"googleMapsLink"`
	Rating         float64 `json:"rating"`
	ReviewCount    int64   `json:"reviewCount"`
}

// SystemStats are back-office totals
type SystemStats struct {
	TotalProducts  int64 `json:"totalProducts"`
	ActiveProducts int64 `json:"activeProducts"`
	TotalOrders    int64 `json:"totalOrders"`
	PendingOrders  int64 `json:"pendingOrders"`
	TotalSales     int64 `json:"totalSales"`
}
