package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxNameLength: ограничение длины имени артикула и имени клиента.
const MaxNameLength = 100

// Article описывает товар каталога.
type Article struct {
	ID   int64
	Name string
	// PriceMinor: цена за единицу в минимальных денежных единицах (центы).
	PriceMinor int64
}

// Validate проверяет инварианты артикула и возвращает ValidationError или nil.
func (a *Article) Validate() error {
	var errs []error

	switch {
	case strings.TrimSpace(a.Name) == "":
		errs = append(errs, ErrArticleNameRequired)
	case utf8.RuneCountInString(a.Name) > MaxNameLength:
		errs = append(errs, ErrArticleNameTooLong)
	}
	if a.PriceMinor < 0 {
		errs = append(errs, ErrArticlePriceNegative)
	}

	return NewValidationError(errs)
}
