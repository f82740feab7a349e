package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const productColumns = `id, sku, name, is_active, is_featured, year_from, year_to, created_at, updated_at`

const variantColumns = `id, component_type, name, selling_price, merchant_price, stock_quantity,
               is_active, created_at, updated_at`

// componentRow is a product_components row joined with its variant.
type componentRow struct {
	model.ProductComponent
	V model.ComponentVariant `db:"v"`
}

func (r *PGRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var rows []componentRow
	query = `
        SELECT pc.product_id, pc.variant_id, pc.is_required, pc.is_default, pc.display_order,
               v.id AS "v.id", v.component_type AS "v.component_type", v.name AS "v.name",
               v.selling_price AS "v.selling_price", v.merchant_price AS "v.merchant_price",
               v.stock_quantity AS "v.stock_quantity", v.is_active AS "v.is_active",
               v.created_at AS "v.created_at", v.updated_at AS "v.updated_at"
        FROM product_components pc
        JOIN component_variants v ON v.id = pc.variant_id
        WHERE pc.product_id = $1
        ORDER BY pc.display_order ASC, v.id ASC
    `
	if err := r.DB.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("failed to load components: %w", err)
	}

	ownerIDs := []string{p.ID}
	for _, row := range rows {
		ownerIDs = append(ownerIDs, row.V.ID)
	}
	images, err := r.imagesFor(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	p.Images = images[p.ID]
	p.Components = make([]model.ProductComponent, 0, len(rows))
	for _, row := range rows {
		link := row.ProductComponent
		link.Variant = row.V
		link.Variant.Images = images[row.V.ID]
		p.Components = append(p.Components, link)
	}
	return &p, nil
}

func (r *PGRepository) GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error) {
	var v model.ComponentVariant
	query := `SELECT ` + variantColumns + ` FROM component_variants WHERE id = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	images, err := r.imagesFor(ctx, []string{v.ID})
	if err != nil {
		return nil, err
	}
	v.Images = images[v.ID]
	return &v, nil
}

// imagesFor loads the images of every owner in one query, grouped by owner id.
func (r *PGRepository) imagesFor(ctx context.Context, ownerIDs []string) (map[string][]model.Image, error) {
	query, args, err := sqlx.In(`
        SELECT id, owner_id, url, is_primary, display_order
        FROM images
        WHERE owner_id IN (?)
        ORDER BY display_order ASC, id ASC
    `, ownerIDs)
	if err != nil {
		return nil, err
	}

	var images []model.Image
	if err := r.DB.SelectContext(ctx, &images, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	byOwner := make(map[string][]model.Image, len(ownerIDs))
	for _, img := range images {
		byOwner[img.OwnerID] = append(byOwner[img.OwnerID], img)
	}
	return byOwner, nil
}

func (r *PGRepository) ListProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.IsFeatured != nil {
		conditions = append(conditions, "is_featured = :is_featured")
		args["is_featured"] = *f.IsFeatured
	}
	if f.Year > 0 {
		conditions = append(conditions, "(year_from IS NULL OR year_from <= :year) AND (year_to IS NULL OR year_to >= :year)")
		args["year"] = f.Year
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count
	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	// List
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY is_featured DESC, name ASC", productColumns, whereClause)
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}
