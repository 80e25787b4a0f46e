package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

var articleColumns = []string{"id", "name", "price_minor"}

type articleRepository struct {
	db *DB
}

// NewArticleRepository создаёт SQL-реализацию ArticleRepository.
func NewArticleRepository(db *DB) domain.ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) List(ctx context.Context) ([]domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.query(ctx, r.db.db, r.db.sb.Select(articleColumns...).From("articles").OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0)
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.PriceMinor); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}

	return articles, nil
}

func (r *articleRepository) Get(ctx context.Context, id int64) (domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row, err := r.db.queryRow(ctx, r.db.db, r.db.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Article{}, err
	}

	var a domain.Article
	if err := row.Scan(&a.ID, &a.Name, &a.PriceMinor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		return domain.Article{}, fmt.Errorf("select article: %w", err)
	}
	return a, nil
}

func (r *articleRepository) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id, err := r.db.insertReturningID(ctx, r.db.db, r.db.sb.Insert("articles").
		SetMap(map[string]any{
			"name":        article.Name,
			"price_minor": article.PriceMinor,
		}))
	if err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	article.ID = id
	return article, nil
}

func (r *articleRepository) Update(ctx context.Context, article domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Update("articles").
		SetMap(map[string]any{
			"name":        article.Name,
			"price_minor": article.PriceMinor,
		}).
		Where(sq.Eq{"id": article.ID}))
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

// Delete удаляет артикул; order_lines.article_id обнуляется внешним ключом ON DELETE SET NULL.
func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.exec(ctx, r.db.db, r.db.sb.Delete("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

var _ domain.ArticleRepository = (*articleRepository)(nil)
