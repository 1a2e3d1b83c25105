package handlers

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	Bookings  *BookingHandler
	Orders    *OrderHandler
	Donations *DonationHandler
	Coupons   *CouponHandler
}
