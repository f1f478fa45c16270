package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDetailLink: строка листинга без ссылки на детальную страницу.
	ErrMissingDetailLink = errors.New("row has no detail link")
	// ErrNoLocationFragments: после очистки не осталось ни одного фрагмента адреса.
	ErrNoLocationFragments = errors.New("no location fragments")
)

// ParseError: текст даты/времени не совпал с ожидаемым форматом.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingElementError: обязательный узел DOM не найден.
type MissingElementError struct {
	Field    string
	Selector string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("missing %s element (selector %q)", e.Field, e.Selector)
}

// RowError привязывает ошибку к строке таблицы листинга.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("listing row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
