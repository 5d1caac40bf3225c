package news

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxDerivedTitleLength はHTML本文から生成するタイトルの最大文字数。
const maxDerivedTitleLength = 80

// plainTextExcerpt はHTML断片からテキストのみを抽出し、
// maxRunes文字に切り詰めた抜粋を返す。
// script/style要素の中身は無視する。
func plainTextExcerpt(htmlBody string, maxRunes int) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlBody))

	var sb strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return truncateRunes(collapseSpaces(sb.String()), maxRunes)

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isNonContentTag(string(name)) {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isNonContentTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			sb.Write(tokenizer.Text())
			sb.WriteByte(' ')
		}
	}
}

func isNonContentTag(name string) bool {
	return name == "script" || name == "style"
}

// collapseSpaces は連続する空白を1つにまとめ、前後の空白を除去する。
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes は文字数ベースで切り詰める。バイト境界では切らない。
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
