package http_api

import "github.com/gin-gonic/gin"

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.GET("/nonce/:wallet", s.nonce)
	authGroup.POST("/wallet-login", s.walletLogin)
	authGroup.GET("/me", s.authRequired(), s.me)
	authGroup.GET("/verify-token", s.authRequired(), s.verifyToken)
	authGroup.POST("/logout", s.authRequired(), s.logout)

	properties := v1.Group("/properties")
	properties.GET("", s.listProperties)
	properties.GET("/featured", s.featuredProperties)
	properties.GET("/:id", s.getProperty)
	properties.GET("/:id/can-invest", s.authRequired(), s.canInvest)
	properties.POST("", s.authRequired(), s.adminRequired(), s.createProperty)
	properties.PUT("/:id", s.authRequired(), s.adminRequired(), s.updateProperty)

	chain := v1.Group("/chain")
	chain.GET("/property", s.chainProperty)
	chain.GET("/network-status", s.networkStatus)
	chain.GET("/balance/:wallet", s.chainBalance)

	kyc := v1.Group("/kyc", s.authRequired())
	kyc.GET("/status", s.kycStatus)
	kyc.GET("/records", s.kycRecords)
	kyc.POST("/prospera-verify", s.submitProsperaKYC)
	kyc.POST("/international-verify", s.submitInternationalKYC)

	kycAdmin := kyc.Group("/admin", s.adminRequired())
	kycAdmin.GET("/pending", s.pendingKYC)
	kycAdmin.GET("/records", s.adminKYCRecords)
	kycAdmin.GET("/records/:id", s.adminKYCRecord)
	kycAdmin.PUT("/records/:id/approve", s.approveKYC)
	kycAdmin.PUT("/records/:id/reject", s.rejectKYC)

	transactions := v1.Group("/transactions", s.authRequired())
	transactions.POST("/purchase", s.purchase)
	transactions.POST("/mint-token", s.mintToken)
	transactions.GET("/tokens/:property_id", s.propertyTokens)
	transactions.GET("/status/:hash", s.transactionStatus)
	transactions.GET("/user/transactions", s.userTransactions)
	transactions.GET("/user/portfolio", s.portfolio)
}
