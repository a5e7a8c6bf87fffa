package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit/markup"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ArticleProvider interface {
	AllUnread(ctx context.Context, since time.Time, limit uint64) (model.Articles, error)
	MarkRead(ctx context.Context, articleID string) error
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Отправка сообщения в телеграм. *tgbotapi.BotAPI подходит.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier постит в канал по одной непрочитанной статье за тик и помечает ее прочитанной
type Notifier struct {
	articles   ArticleProvider
	summarizer Summarizer
	bot        Sender
	// Как часто проверяем новые статьи
	sendInterval time.Duration
	// Насколько далеко в прошлое смотрим
	lookupTimeWindow time.Duration
	channelID        int64
	httpClient       *http.Client

	mu sync.Mutex
	// Сколько раз подряд не удалось отправить статью
	sendFailures map[string]int
}

// После стольких неудачных отправок статья помечается прочитанной, чтобы не блокировать очередь
const maxSendAttempts = 3

func New(
	articleProvider ArticleProvider,
	summarizer Summarizer,
	bot Sender,
	sendInterval time.Duration,
	lookupTimeWindow time.Duration,
	channelID int64,
) *Notifier {
	return &Notifier{
		articles:         articleProvider,
		summarizer:       summarizer,
		bot:              bot,
		sendInterval:     sendInterval,
		lookupTimeWindow: lookupTimeWindow,
		channelID:        channelID,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		sendFailures:     make(map[string]int),
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	ticker := time.NewTicker(n.sendInterval)
	defer ticker.Stop()

	n.tick(ctx)

	for {
		select {
		case <-ticker.C:
			n.tick(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ошибка одного тика не останавливает notifier
func (n *Notifier) tick(ctx context.Context) {
	if err := n.SelectAndSendArticle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] failed to send article: %v", err)
	}
}

func (n *Notifier) SelectAndSendArticle(ctx context.Context) error {
	topOneArticles, err := n.articles.AllUnread(ctx, time.Now().Add(-n.lookupTimeWindow), 1)
	if err != nil {
		return fmt.Errorf("select unread articles: %w", err)
	}

	if len(topOneArticles) == 0 {
		return nil
	}

	article := topOneArticles[0]

	summary, err := n.extractSummary(ctx, article)
	if err != nil {
		// Без summary статью все равно можно отправить
		log.Printf("[WARN] failed to summarize article %s: %v", article.ArticleID, err)
		summary = ""
	}

	if err := n.sendArticle(article, summary); err != nil {
		if n.registerSendFailure(article.ArticleID) < maxSendAttempts {
			return fmt.Errorf("send article %s: %w", article.ArticleID, err)
		}

		log.Printf("[ERROR] giving up on article %s after %d attempts: %v", article.ArticleID, maxSendAttempts, err)
	}

	n.resetSendFailures(article.ArticleID)

	return n.articles.MarkRead(ctx, article.ArticleID)
}

func (n *Notifier) registerSendFailure(articleID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sendFailures[articleID]++
	return n.sendFailures[articleID]
}

func (n *Notifier) resetSendFailures(articleID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.sendFailures, articleID)
}

// Текст для summary берем из самой статьи, а если его нет, то со страницы по ссылке
func (n *Notifier) extractSummary(ctx context.Context, article model.Article) (string, error) {
	var r io.Reader

	if text := articleText(article); text != "" {
		r = strings.NewReader(text)
	} else if link := lo.FromPtr(article.URL); link != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return "", err
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		r = resp.Body
	} else {
		return "", nil
	}

	doc, err := readability.FromReader(r, nil)
	if err != nil {
		return "", err
	}

	summary, err := n.summarizer.Summarize(ctx, cleanText(doc.TextContent))
	if err != nil {
		return "", err
	}

	if summary == "" {
		return "", nil
	}

	return "\n\n" + summary, nil
}

// Самый полный текст, который есть у статьи
func articleText(article model.Article) string {
	for _, text := range []*string{article.ContentHTML, article.ContentText, article.Summary} {
		if v := strings.TrimSpace(lo.FromPtr(text)); v != "" {
			return v
		}
	}
	return ""
}

func (n *Notifier) sendArticle(article model.Article, summary string) error {
	msg := tgbotapi.NewMessage(n.channelID, formatArticle(article, summary))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := n.bot.Send(msg)
	return err
}

// Жирный заголовок, потом summary, потом ссылка
func formatArticle(article model.Article, summary string) string {
	const msgFormat = "*%s*%s\n\n%s"

	title := lo.FromPtr(article.Title)
	if title == "" {
		title = article.UniqueID
	}

	return fmt.Sprintf(
		msgFormat,
		markup.EscapeForMarkdown(title),
		markup.EscapeForMarkdown(summary),
		markup.EscapeForMarkdown(lo.FromPtr(article.URL)),
	)
}

// readability оставляет после себя много пустых строк, схлопываем их
var redundantNewLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	return redundantNewLines.ReplaceAllString(text, "\n")
}
