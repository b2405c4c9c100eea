package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupShopRoutes injects sellers and books related api endpoints. Collections
// live under a trailing slash and the bare form is redirected by the router.
func (api *APIHandler) SetupShopRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/api/v1/seller/", m.public(api.CreateSeller))
	router.GET("/api/v1/seller/", m.public(api.GetAllSellers))
	router.GET("/api/v1/seller/:seller_id", m.public(api.GetOneSeller))
	router.PUT("/api/v1/seller/:seller_id", m.public(api.UpdateSeller))
	router.DELETE("/api/v1/seller/:seller_id", m.public(api.DeleteOneSeller))

	router.POST("/api/v1/books/", m.public(api.CreateBook))
	router.GET("/api/v1/books/", m.public(api.GetAllBooks))
	router.GET("/api/v1/books/:id", m.public(api.GetOneBook))
	router.PUT("/api/v1/books/:id", m.public(api.UpdateBook))
	router.DELETE("/api/v1/books/:id", m.public(api.DeleteOneBook))
	return router
}
