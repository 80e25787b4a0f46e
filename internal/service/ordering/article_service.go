package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
)

const entityArticle = "article"

// ArticleService: CRUD артикулов.
type ArticleService struct {
	repo domain.ArticleRepository
	deps
}

// NewArticleService конструирует сервис артикулов.
func NewArticleService(repo domain.ArticleRepository, opts ...Option) *ArticleService {
	return &ArticleService{repo: repo, deps: newDeps("article-service", opts)}
}

// ListArticles возвращает все артикулы; пустое хранилище даёт пустой срез.
func (s *ArticleService) ListArticles(ctx context.Context) (_ []dto.ArticleDto, err error) {
	defer func(started time.Time) { s.observe(entityArticle, "list", started, err) }(time.Now())

	articles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromArticles(articles), nil
}

// GetArticle возвращает None, если артикула нет.
func (s *ArticleService) GetArticle(ctx context.Context, id int64) (_ mo.Option[dto.ArticleDto], err error) {
	defer func(started time.Time) { s.observe(entityArticle, "get", started, err) }(time.Now())

	article, err := s.repo.Get(ctx, id)
	if errors.Is(err, domain.ErrArticleNotFound) {
		return mo.None[dto.ArticleDto](), nil
	}
	if err != nil {
		return mo.None[dto.ArticleDto](), err
	}
	return mo.Some(dto.FromArticle(article)), nil
}

// CreateArticle сохраняет новый артикул и возвращает его с назначенным ID.
func (s *ArticleService) CreateArticle(ctx context.Context, in *dto.ArticleDto) (_ dto.ArticleDto, err error) {
	defer func(started time.Time) { s.observe(entityArticle, "create", started, err) }(time.Now())

	if in == nil {
		return dto.ArticleDto{}, domain.ErrInvalidArgument
	}

	article := dto.ToArticle(*in)
	if err := article.Validate(); err != nil {
		return dto.ArticleDto{}, err
	}

	created, err := s.repo.Create(ctx, article)
	if err != nil {
		return dto.ArticleDto{}, err
	}

	s.logger.WithField("article_id", created.ID).Info("article created")
	return dto.FromArticle(created), nil
}

// UpdateArticle перезаписывает название и цену артикула in.ArticleID.
func (s *ArticleService) UpdateArticle(ctx context.Context, in *dto.ArticleDto) (err error) {
	defer func(started time.Time) { s.observe(entityArticle, "update", started, err) }(time.Now())

	if in == nil {
		return domain.ErrInvalidArgument
	}

	existing, err := s.repo.Get(ctx, in.ArticleID)
	if err != nil {
		return err
	}

	dto.ApplyArticle(&existing, *in)
	if err := existing.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}

	s.logger.WithField("article_id", existing.ID).Info("article updated")
	return nil
}

// DeleteArticle удаляет артикул; позиции заказов сохраняют свои снимки.
func (s *ArticleService) DeleteArticle(ctx context.Context, id int64) (err error) {
	defer func(started time.Time) { s.observe(entityArticle, "delete", started, err) }(time.Now())

	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{"article_id": id}).Info("article deleted")
	return nil
}
