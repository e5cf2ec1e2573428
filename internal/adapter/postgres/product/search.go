package product

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/brunovale/catalog-backend/internal/adapter/postgres"
	"github.com/brunovale/catalog-backend/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// sortColumn maps an external sort key to a products column. Unknown keys
// fall back to the product name so pagination stays deterministic no matter
// what the caller sends.
func sortColumn(key string) string {
	switch strings.ToLower(key) {
	case "id":
		return "p.id"
	case "name":
		return "p.name"
	case "price":
		return "p.price"
	case "date":
		return "p.date"
	default:
		return "p.name"
	}
}

// SearchProjection runs the paginated id/name projection over the
// product-category join. Grouping by the primary key collapses duplicate
// rows from multi-category matches while still letting ORDER BY reference
// any products column. p.id breaks ties so equal sort values page stably.
func (r *Repo) SearchProjection(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.ProductSummary, error) {
	direction := "ASC"
	if page.Direction == domain.SortDesc {
		direction = "DESC"
	}

	column := sortColumn(page.SortBy)

	query := builder.
		Select("p.id", "p.name").
		From("products p").
		GroupBy("p.id").
		OrderBy(fmt.Sprintf("%s %s", column, direction)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))

	if column != "p.id" {
		query = query.OrderBy("p.id ASC")
	}

	query = applyFilter(query, filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product projection: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search product projection: %w", err)
	}
	defer rows.Close()

	var summaries []domain.ProductSummary
	for rows.Next() {
		var s domain.ProductSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan product projection: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search product projection: %w", err)
	}

	if summaries == nil {
		summaries = []domain.ProductSummary{}
	}

	return summaries, nil
}

// CountDistinct counts the products matching the filter. The count runs over
// the same join as the projection, so it must deduplicate multi-category
// matches the same way.
func (r *Repo) CountDistinct(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	query := applyFilter(builder.
		Select("COUNT(DISTINCT p.id)").
		From("products p"), filter)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build product count: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int64
	if err := querier.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return total, nil
}

// applyFilter attaches the join and WHERE predicates shared by the
// projection and the count. The join is LEFT so products without categories
// still match when no category filter is set.
func applyFilter(query sq.SelectBuilder, filter domain.ProductFilter) sq.SelectBuilder {
	query = query.LeftJoin("product_categories pc ON pc.product_id = p.id")

	if filter.Name != "" {
		query = query.Where(sq.Expr("p.name ILIKE ?", likePattern(filter.Name)))
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where(sq.Expr("pc.category_id = ANY(?)", filter.CategoryIDs))
	}

	return query
}

// likePattern wraps the term for substring matching, escaping LIKE
// metacharacters so user input never acts as a wildcard.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
