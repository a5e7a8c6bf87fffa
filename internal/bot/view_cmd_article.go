package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit/markup"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

type ArticleLookup interface {
	ArticlesByIDs(ctx context.Context, ids []string) (model.Articles, error)
}

// /article 9e107d9d372bb6826bd81d3542a419d6
func ViewCmdArticle(lookup ArticleLookup) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		id := strings.TrimSpace(update.Message.CommandArguments())
		if id == "" {
			return replyText(bot, update, "Укажите ID статьи: `/article <id>`")
		}

		articles, err := lookup.ArticlesByIDs(ctx, []string{id})
		if err != nil {
			return err
		}

		article, ok := articles.ByID()[id]
		if !ok {
			return replyText(bot, update, fmt.Sprintf("Статья %s не найдена", markup.EscapeForMarkdown(id)))
		}

		return replyText(bot, update, formatArticleInfo(article))
	}
}

func formatArticleInfo(article model.Article) string {
	title := lo.FromPtr(article.Title)
	if title == "" {
		title = article.UniqueID
	}

	status := "нет статуса"
	if article.Status != nil {
		status = lo.Ternary(article.Status.Read, "прочитана", "не прочитана")
	}

	lines := []string{
		fmt.Sprintf("📰 *%s*", markup.EscapeForMarkdown(title)),
		"ID: " + markup.EscapeForMarkdown(article.ArticleID),
		fmt.Sprintf("Лента: `%s`", article.FeedID),
		"Статус: " + status,
	}
	if link := lo.FromPtr(article.URL); link != "" {
		lines = append(lines, "URL: "+markup.EscapeForMarkdown(link))
	}
	if article.DatePublished != nil {
		lines = append(lines, "Опубликована: "+markup.EscapeForMarkdown(article.DatePublished.UTC().Format("2006-01-02 15:04")))
	}

	return strings.Join(lines, "\n")
}
