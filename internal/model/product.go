package model

// Keep in sync with the max tags on controller.ProductRequest and the
// column widths in the migrations.
const (
	// NombreMaxLen is the width of the nombre column.
	NombreMaxLen = 100
	// ImagenMaxLen is the width of the imagen column.
	ImagenMaxLen = 400
)

// Product is a cafeteria catalog entry. ID is assigned by the database on insert.
type Product struct {
	ID     int64
	Nombre string
	Precio int64
	// Imagen is a bare filename resolved against the asset store.
	Imagen string
}

// HasImage reports whether the product references an image file.
func (p *Product) HasImage() bool {
	return p.Imagen != ""
}
