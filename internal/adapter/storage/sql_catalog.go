package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (c *SQLCatalog) Insert(ctx context.Context, g domain.NewGoods) (int64, error) {
	result, err := c.db.ExecContext(ctx, `
		INSERT INTO goods (category_id, name, price, characteristics, photo)
		VALUES (?, ?, ?, ?, ?)`,
		g.CategoryID, g.Name, g.Price, g.Characteristics, g.Photo,
	)
	if err != nil {
		return 0, fmt.Errorf("insert goods: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert goods id: %w", err)
	}
	return id, nil
}

// Query returns the goods matching f ordered by id, which is insertion order.
func (c *SQLCatalog) Query(ctx context.Context, f domain.GoodsFilter) ([]domain.Goods, error) {
	var q strings.Builder
	q.WriteString(`
		SELECT id, category_id, name, price, characteristics, photo
		FROM goods
		WHERE name LIKE ? ESCAPE '!' AND category_id LIKE ? ESCAPE '!'`)
	args := []any{likePrefix(f.BrandPrefix), likePrefix(f.CategoryPrefix)}

	if f.Characteristic != "" {
		q.WriteString(` AND characteristics LIKE ? ESCAPE '!'`)
		args = append(args, likeContains(f.Characteristic))
	}

	switch f.Price.Op {
	case domain.PriceAtLeast:
		q.WriteString(` AND price >= ?`)
		args = append(args, f.Price.Bound)
	case domain.PriceAtMost:
		q.WriteString(` AND price <= ?`)
		args = append(args, f.Price.Bound)
	}

	q.WriteString(` ORDER BY id`)
	if f.FirstOnly {
		q.WriteString(` LIMIT 1`)
	}

	rows, err := c.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query goods: %w", err)
	}
	defer rows.Close()

	var goods []domain.Goods
	for rows.Next() {
		var g domain.Goods
		if err := rows.Scan(&g.ID, &g.CategoryID, &g.Name, &g.Price, &g.Characteristics, &g.Photo); err != nil {
			return nil, fmt.Errorf("scan goods: %w", err)
		}
		goods = append(goods, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goods: %w", err)
	}
	return goods, nil
}

// AveragePrice is 0 when nothing matches.
func (c *SQLCatalog) AveragePrice(ctx context.Context, brandPrefix, categoryPrefix string) (float64, error) {
	var avg sql.NullFloat64
	err := c.db.QueryRowContext(ctx, `
		SELECT AVG(price) FROM goods
		WHERE name LIKE ? ESCAPE '!' AND category_id LIKE ? ESCAPE '!'`,
		likePrefix(brandPrefix), likePrefix(categoryPrefix),
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average price: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func (c *SQLCatalog) Delete(ctx context.Context, goodsID int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM goods WHERE id = ?`, goodsID)
	if err != nil {
		return fmt.Errorf("delete goods: %w", err)
	}

	rows, err := affectedRows(result, "delete goods")
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoodsNotFound
	}
	return nil
}

func (c *SQLCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
