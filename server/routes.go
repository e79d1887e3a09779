package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteFavicon, s.FaviconHandler())

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// LINK
	s.RegisterRouteHandler("POST "+RouteCreateLinkToken, ChainMiddleware(s.CreateLinkTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteExchangePublicToken, ChainMiddleware(s.ExchangePublicTokenHandler(), s.APIMiddleware()...))

	// DATA
	s.RegisterRouteHandler("GET "+RouteTransactions, ChainMiddleware(s.TransactionsHandler(), s.APIMiddleware()...))

	// Preflight, only on the API routes so unknown paths still 404
	for _, route := range []string{RouteLogin, RouteLogout, RouteCreateLinkToken, RouteExchangePublicToken, RouteTransactions} {
		s.RegisterRouteHandler("OPTIONS "+route, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	}
}
