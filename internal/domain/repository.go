package domain

import "context"

// ArticleRepository описывает требования к хранилищу артикулов.
type ArticleRepository interface {
	// List возвращает все артикулы; пустое хранилище даёт пустой срез, а не nil.
	List(ctx context.Context) ([]Article, error)
	// Get возвращает артикул или ErrArticleNotFound.
	Get(ctx context.Context, id int64) (Article, error)
	// Create сохраняет артикул и возвращает его с назначенным ID.
	Create(ctx context.Context, article Article) (Article, error)
	// Update перезаписывает изменяемые поля артикула.
	Update(ctx context.Context, article Article) error
	// Delete удаляет артикул; позиции заказов сохраняют свои снимки названия и цены.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository описывает требования к хранилищу заказов. Заказы всегда
// возвращаются вместе с позициями.
type OrderRepository interface {
	List(ctx context.Context) ([]Order, error)
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id int64) (Order, error)
	// Create сохраняет заказ и его позиции в одной транзакции.
	Create(ctx context.Context, order Order) (Order, error)
	// Update в одной транзакции обновляет скалярные поля заказа (кроме номера)
	// и применяет changes: явное удаление, обновление и вставку позиций.
	Update(ctx context.Context, order Order, changes LineChanges) error
	// Delete удаляет заказ; позиции удаляются каскадно.
	Delete(ctx context.Context, id int64) error
}

// OrderLineRepository описывает требования к хранилищу позиций заказов.
type OrderLineRepository interface {
	List(ctx context.Context) ([]OrderLine, error)
	// Get возвращает позицию или ErrOrderLineNotFound.
	Get(ctx context.Context, id int64) (OrderLine, error)
	Create(ctx context.Context, line OrderLine) (OrderLine, error)
	// Update перезаписывает поля позиции по её ID; сам ID не меняется.
	Update(ctx context.Context, line OrderLine) error
	Delete(ctx context.Context, id int64) error
}
