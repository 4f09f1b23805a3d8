package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
)

const productColumns = "id, nombre, precio, imagen"

// ProductRepository implements repository.ProductRepository on the productos table.
type ProductRepository struct {
	conn
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{conn: conn{db: db}}
}

// Create inserts a new product and returns it with the id assigned by the database.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `INSERT INTO productos (nombre, precio, imagen) VALUES ($1, $2, $3) RETURNING id`

	stmt, err := r.executor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	created := *product
	if err := stmt.QueryRowContext(ctx, product.Nombre, product.Precio, product.Imagen).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return &created, nil
}

// List retrieves products in primary key order.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM productos WHERE 1=1")

	var args []interface{}
	argIndex := 1

	if query.Paginator != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND id > $%d", argIndex))
		args = append(args, query.Paginator.LastID)
		argIndex++
	}

	queryBuilder.WriteString(" ORDER BY id ASC")

	if query.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
		args = append(args, query.Limit)
	}

	stmt, err := r.executor().PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0)
	for rows.Next() {
		var product model.Product
		if err := rows.Scan(&product.ID, &product.Nombre, &product.Precio, &product.Imagen); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM productos WHERE id = $1`
	return r.queryOne(ctx, "select", query, id)
}

// Update overwrites nombre, precio and imagen of the row with product.ID.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `UPDATE productos SET nombre = $1, precio = $2, imagen = $3 WHERE id = $4 RETURNING ` + productColumns
	return r.queryOne(ctx, "update", query, product.Nombre, product.Precio, product.Imagen, product.ID)
}

// DeleteByID deletes a product by ID and returns the deleted row.
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `DELETE FROM productos WHERE id = $1 RETURNING ` + productColumns
	return r.queryOne(ctx, "delete", query, id)
}

func (r *ProductRepository) queryOne(ctx context.Context, op, query string, args ...interface{}) (*model.Product, error) {
	stmt, err := r.executor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s statement: %w", op, err)
	}
	defer stmt.Close()

	var result model.Product
	err = stmt.QueryRowContext(ctx, args...).Scan(&result.ID, &result.Nombre, &result.Precio, &result.Imagen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product not found: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to %s product: %w", op, err)
	}

	return &result, nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
