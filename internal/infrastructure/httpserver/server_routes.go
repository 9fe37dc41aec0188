package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	limited := s.middleware.RateLimit.Handler()

	// link mailed to the account owner
	s.echo.GET("/confirm-email/:token", s.confirmEmailPage, limited)

	api := s.echo.Group("/api/v1", limited)
	api.POST("/signup", s.signupHandler)
	api.GET("/confirm-email", s.confirmEmail)
	api.POST("/confirm-email", s.confirmEmail)

	protected := api.Group("")
	protected.Use(s.middleware.Session.RequireSession())
	protected.POST("/resend-verification", s.resendVerification)
}
