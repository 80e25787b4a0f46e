package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

type articleRepositoryInMemory struct {
	store *Store
}

// NewArticleRepository возвращает in-memory репозиторий артикулов поверх store.
func NewArticleRepository(store *Store) domain.ArticleRepository {
	return &articleRepositoryInMemory{store: store}
}

func (r *articleRepositoryInMemory) List(_ context.Context) ([]domain.Article, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Article, 0, len(r.store.articles))
	for _, article := range r.store.articles {
		result = append(result, article)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *articleRepositoryInMemory) Get(_ context.Context, id int64) (domain.Article, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	article, ok := r.store.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return article, nil
}

func (r *articleRepositoryInMemory) Create(_ context.Context, article domain.Article) (domain.Article, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextArticleID++
	article.ID = r.store.nextArticleID
	r.store.articles[article.ID] = article
	return article, nil
}

func (r *articleRepositoryInMemory) Update(_ context.Context, article domain.Article) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.articles[article.ID]; !ok {
		return domain.ErrArticleNotFound
	}
	r.store.articles[article.ID] = article
	return nil
}

// Delete удаляет артикул и обнуляет ссылки на него (ON DELETE SET NULL).
func (r *articleRepositoryInMemory) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.articles[id]; !ok {
		return domain.ErrArticleNotFound
	}
	delete(r.store.articles, id)

	for lineID, line := range r.store.lines {
		if line.ArticleID != nil && *line.ArticleID == id {
			line.ArticleID = nil
			r.store.lines[lineID] = line
		}
	}
	return nil
}

var _ domain.ArticleRepository = (*articleRepositoryInMemory)(nil)
