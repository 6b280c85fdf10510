package http

import (
	"github.com/gin-gonic/gin"

	"github.com/reimx/reimx-backend/internal/auth"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Users          *UserHandler
	Assets         *AssetHandler
	Reimbursements *ReimbursementHandler
	Tokens         *auth.TokenManager
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	api := router.Group("/api")

	api.POST("/auth/register", h.Users.Register)
	api.POST("/auth/login", h.Users.Login)

	authed := api.Group("", Authenticate(h.Tokens))
	{
		authed.GET("/profile", h.Users.GetProfile)
		authed.PUT("/profile", h.Users.UpdateProfile)

		authed.POST("/assets", h.Assets.CreateAsset)
		authed.GET("/assets", h.Assets.ListAssets)
		authed.GET("/assets/:id", h.Assets.GetAsset)
		authed.DELETE("/assets/:id", h.Assets.DeleteAsset)
		authed.GET("/assets/:id/records", h.Assets.ListRecords)
		authed.POST("/assets/:id/records", h.Assets.CreateRecord)
		authed.PUT("/records/:id", h.Assets.UpdateRecord)
		authed.DELETE("/records/:id", h.Assets.DeleteRecord)

		authed.POST("/reimbursements", h.Reimbursements.Submit)
		authed.GET("/reimbursements", h.Reimbursements.ListMine)
	}

	admin := authed.Group("/admin", RequireAdmin())
	{
		admin.GET("/users", h.Users.ListUsers)
		admin.GET("/reimbursements", h.Reimbursements.ListByStatus)
		admin.POST("/reimbursements/:id/review", h.Reimbursements.Review)
		admin.POST("/payouts/export", h.Reimbursements.ExportBatch)
	}

	return router
}
