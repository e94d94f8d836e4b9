package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Collection is the capability handle for one saved/favourite relation:
// resolve an item from its external identifier, test membership, and
// add/remove. All three catalog kinds share one implementation so the
// toggle semantics cannot drift apart.
type Collection interface {
	Kind() domain.CatalogKind
	// Resolve looks the item up by slug or numeric id; nil when absent.
	Resolve(ctx context.Context, ref string) (*domain.CatalogItem, error)
	Contains(ctx context.Context, userID, itemID int64) (bool, error)
	Add(ctx context.Context, userID, itemID int64) error
	Remove(ctx context.Context, userID, itemID int64) error
	List(ctx context.Context, userID int64) ([]domain.CatalogItem, error)
}

type FavouriteRepository interface {
	Products() Collection
	Prompts() Collection
	Templates() Collection
	Collection(kind domain.CatalogKind) Collection
}

type favouriteRepository struct {
	products  *sqlCollection
	prompts   *sqlCollection
	templates *sqlCollection
}

func NewFavouriteRepository(pool *pgxpool.Pool) FavouriteRepository {
	return &favouriteRepository{
		products: &sqlCollection{
			pool:     pool,
			kind:     domain.KindProduct,
			resolveQ: `SELECT id, slug, name FROM products WHERE slug = $1`,
			memberQ:  `SELECT EXISTS (SELECT 1 FROM favourite_products WHERE profile_user_id = $1 AND product_id = $2)`,
			addQ:     `INSERT INTO favourite_products (profile_user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			removeQ:  `DELETE FROM favourite_products WHERE profile_user_id = $1 AND product_id = $2`,
			listQ: `SELECT p.id, p.slug, p.name FROM products p
				JOIN favourite_products f ON f.product_id = p.id
				WHERE f.profile_user_id = $1
				ORDER BY p.name`,
		},
		prompts: &sqlCollection{
			pool:     pool,
			kind:     domain.KindPrompt,
			byID:     true,
			resolveQ: `SELECT id, '', title FROM prompts WHERE id = $1`,
			memberQ:  `SELECT EXISTS (SELECT 1 FROM saved_prompts WHERE profile_user_id = $1 AND prompt_id = $2)`,
			addQ:     `INSERT INTO saved_prompts (profile_user_id, prompt_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			removeQ:  `DELETE FROM saved_prompts WHERE profile_user_id = $1 AND prompt_id = $2`,
			listQ: `SELECT p.id, '', p.title FROM prompts p
				JOIN saved_prompts s ON s.prompt_id = p.id
				WHERE s.profile_user_id = $1
				ORDER BY p.title`,
		},
		templates: &sqlCollection{
			pool:     pool,
			kind:     domain.KindTemplate,
			resolveQ: `SELECT id, slug, title FROM prompt_templates WHERE slug = $1`,
			memberQ:  `SELECT EXISTS (SELECT 1 FROM saved_templates WHERE profile_user_id = $1 AND template_id = $2)`,
			addQ:     `INSERT INTO saved_templates (profile_user_id, template_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			removeQ:  `DELETE FROM saved_templates WHERE profile_user_id = $1 AND template_id = $2`,
			listQ: `SELECT t.id, t.slug, t.title FROM prompt_templates t
				JOIN saved_templates s ON s.template_id = t.id
				WHERE s.profile_user_id = $1
				ORDER BY t.title`,
		},
	}
}

func (r *favouriteRepository) Products() Collection  { return r.products }
func (r *favouriteRepository) Prompts() Collection   { return r.prompts }
func (r *favouriteRepository) Templates() Collection { return r.templates }

func (r *favouriteRepository) Collection(kind domain.CatalogKind) Collection {
	switch kind {
	case domain.KindProduct:
		return r.products
	case domain.KindPrompt:
		return r.prompts
	case domain.KindTemplate:
		return r.templates
	}
	return nil
}

type sqlCollection struct {
	pool *pgxpool.Pool
	kind domain.CatalogKind
	// byID collections resolve by numeric id instead of slug.
	byID     bool
	resolveQ string
	memberQ  string
	addQ     string
	removeQ  string
	listQ    string
}

func (c *sqlCollection) Kind() domain.CatalogKind { return c.kind }

func (c *sqlCollection) Resolve(ctx context.Context, ref string) (*domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var arg any = ref
	if c.byID {
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			return nil, nil
		}
		arg = id
	}

	var item domain.CatalogItem
	err := c.pool.QueryRow(ctx, c.resolveQ, arg).Scan(&item.ID, &item.Slug, &item.Title)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	item.Kind = c.kind
	return &item, nil
}

func (c *sqlCollection) Contains(ctx context.Context, userID, itemID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var member bool
	err := c.pool.QueryRow(ctx, c.memberQ, userID, itemID).Scan(&member)
	return member, err
}

func (c *sqlCollection) Add(ctx context.Context, userID, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := c.pool.Exec(ctx, c.addQ, userID, itemID)
	return err
}

func (c *sqlCollection) Remove(ctx context.Context, userID, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := c.pool.Exec(ctx, c.removeQ, userID, itemID)
	return err
}

func (c *sqlCollection) List(ctx context.Context, userID int64) ([]domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := c.pool.Query(ctx, c.listQ, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(&item.ID, &item.Slug, &item.Title); err != nil {
			return nil, err
		}
		item.Kind = c.kind
		items = append(items, item)
	}

	return items, rows.Err()
}
