package markup

import "strings"

// Символы, которые MarkdownV2 в телеграме требует экранировать
const markdownV2Special = "\\_*[]()~`>#+-=|{}.!"

var replacer = newEscaper(markdownV2Special)

func newEscaper(chars string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(chars))
	for _, c := range chars {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// Экранирует спецсимволы markdown для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}
