package server

// Route path constants
const (
	RouteIndex   = "/"
	RouteFavicon = "/favicon.ico"

	// Session identity
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// Account linking
	RouteCreateLinkToken     = "/create_link_token"
	RouteExchangePublicToken = "/exchange_public_token"

	// Data
	RouteTransactions = "/transactions"
)
