package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/losbaristas/cafeteria-catalog/internal/assets"
	"github.com/losbaristas/cafeteria-catalog/internal/metrics"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
	"github.com/losbaristas/cafeteria-catalog/internal/service"
)

// NextPageTokenHeader carries the cursor of the next page when a limited list is full.
const NextPageTokenHeader = "X-Next-Page-Token"

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
	images         assets.Store
}

// NewProductController creates a new ProductController with the given product service
// and the store product images are read from.
func NewProductController(productService *service.ProductService, images assets.Store) *ProductController {
	return &ProductController{
		productService: productService,
		images:         images,
	}
}

// ProductRequest represents the request body for creating or replacing a product.
// Pointers tell an absent key apart from a zero value. The max tags follow
// model.NombreMaxLen and model.ImagenMaxLen.
type ProductRequest struct {
	Nombre *string `json:"nombre" binding:"required,max=100"`
	Precio *int64  `json:"precio" binding:"required,gte=0,max=2147483647"`
	Imagen *string `json:"imagen" binding:"required,max=400"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Precio int64  `json:"precio"`
	Imagen string `json:"imagen"`
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Limit int32  `form:"limit"`
	Token string `form:"token"`
}

// ListProducts handles the HTTP GET request for the product collection.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidLimit})
		return
	}

	query := repository.NewQuery()
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPageToken})
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		pc.internalError(c, "Failed to list products", err)
		return
	}

	productResponses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		productResponses = append(productResponses, toProductResponse(product))
	}

	// A full page may have more rows behind it.
	if query.Limit > 0 && len(products) == query.Limit {
		paginator := repository.Paginator{LastID: products[len(products)-1].ID}
		c.Header(NextPageTokenHeader, paginator.Encode())
	}

	c.JSON(http.StatusOK, productResponses)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c, msgProductNotFound)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		pc.handleProductError(c, "Failed to get product", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), *req.Nombre, *req.Precio, *req.Imagen)
	if err != nil {
		pc.internalError(c, "Failed to create product", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(createdProduct))
}

// UpdateProduct handles the HTTP PUT request that replaces every field of a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, msgProductNotFound)
	if !ok {
		return
	}

	var req ProductRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	updatedProduct, err := pc.productService.UpdateProduct(c.Request.Context(), id, *req.Nombre, *req.Precio, *req.Imagen)
	if err != nil {
		pc.handleProductError(c, "Failed to update product", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(updatedProduct))
}

// DeleteProduct handles the HTTP DELETE request and answers with the deleted product.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, msgProductNotFound)
	if !ok {
		return
	}

	deletedProduct, err := pc.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		pc.handleProductError(c, "Failed to delete product", err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(deletedProduct))
}

// GetProductImage streams the image file named by the product's imagen field.
func (pc *ProductController) GetProductImage(c *gin.Context) {
	id, ok := parseID(c, msgImageNotFound)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": msgImageNotFound})
			return
		}
		pc.internalError(c, "Failed to get product", err)
		return
	}
	if !product.HasImage() {
		c.JSON(http.StatusNotFound, gin.H{"error": msgImageNotFound})
		return
	}

	asset, err := pc.images.Open(c.Request.Context(), product.Imagen)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) || errors.Is(err, assets.ErrInvalidName) {
			slog.Warn("Product image unavailable",
				slog.Int64("product_id", product.ID),
				slog.String("imagen", product.Imagen),
				slog.Any("err", err))
			c.JSON(http.StatusNotFound, gin.H{"error": msgImageNotFound})
			return
		}
		pc.internalError(c, "Failed to open product image", err)
		return
	}
	defer asset.Content.Close()

	metrics.ProductImagesServed.Inc()
	http.ServeContent(c.Writer, c.Request, asset.Name, asset.ModTime, asset.Content)
}

func (pc *ProductController) handleProductError(c *gin.Context, msg string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
		return
	}
	pc.internalError(c, msg, err)
}

func (pc *ProductController) internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, slog.String("path", c.Request.URL.Path), slog.Any("err", err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
}

// parseID reads the :id path parameter. An id that is not an integer cannot
// name any row, so it is answered with notFoundMsg.
func parseID(c *gin.Context, notFoundMsg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return 0, false
	}
	return id, true
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:     product.ID,
		Nombre: product.Nombre,
		Precio: product.Precio,
		Imagen: product.Imagen,
	}
}
