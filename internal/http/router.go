package http

import (
	"github.com/gin-gonic/gin"
	"github.com/losbaristas/cafeteria-catalog/internal/config"
	"github.com/losbaristas/cafeteria-catalog/internal/http/controller"
	"github.com/losbaristas/cafeteria-catalog/internal/http/middleware"
)

// ProductsPath is the prefix of every catalog route.
const ProductsPath = "/cafeteria/productos"

func InitRouter(conf *config.Config, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	server.HandleMethodNotAllowed = true

	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger())

	server.GET("/ping", ctr.Ping)

	// Only the collection root is exposed cross-origin, with and without trailing slash.
	cors := middleware.CORS(conf.CORS.AllowedOrigin)
	products := server.Group(ProductsPath)
	for _, root := range []string{"", "/"} {
		products.GET(root, cors, productCtr.ListProducts)
		products.POST(root, cors, productCtr.CreateProduct)
		products.OPTIONS(root, cors, preflight)
	}
	{
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
		products.GET("/imagen/:id", productCtr.GetProductImage)
	}

	server.NoRoute(ctr.NotFound)
	server.NoMethod(ctr.MethodNotAllowed)

	return server
}

// preflight only registers the route; CORS answers every OPTIONS request.
func preflight(c *gin.Context) {
	c.Status(204)
}
