package model

import "github.com/samber/lo"

// Набор статей. Ни один метод не меняет исходный слайс.
type Articles []Article

// ID всех статей без повторов
func (a Articles) IDs() []string {
	return lo.Uniq(lo.Map(a, func(article Article, _ int) string {
		return article.DatabaseID()
	}))
}

func (a Articles) EachHasAStatus() bool {
	return lo.EveryBy(a, func(article Article) bool {
		return article.Status != nil
	})
}

func (a Articles) MissingStatuses() Articles {
	return lo.Filter(a, func(article Article, _ int) bool {
		return article.Status == nil
	})
}

// Статусы, которые уже подгружены, без повторов
func (a Articles) Statuses() []ArticleStatus {
	return lo.Uniq(lo.FilterMap(a, func(article Article, _ int) (ArticleStatus, bool) {
		if article.Status == nil {
			return ArticleStatus{}, false
		}
		return *article.Status, true
	}))
}

// Таблица статей по ID.
// Если ID повторяется, остается последняя статья: дубликаты это ошибка вызывающего.
func (a Articles) ByID() map[string]Article {
	m := make(map[string]Article, len(a))
	for _, article := range a {
		m[article.ArticleID] = article
	}
	return m
}

func (a Articles) DatabaseObjects() []DatabaseObject {
	return lo.Map(a, func(article Article, _ int) DatabaseObject {
		return article
	})
}
