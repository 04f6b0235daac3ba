package view

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/opencollective/frontend/internal/domain"
)

var (
	supportedLanguages = []language.Tag{
		language.English,
		language.French,
		language.German,
		language.Spanish,
		language.Japanese,
	}
	matcher = language.NewMatcher(supportedLanguages)

	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	ugc      = bluemonday.UGCPolicy()
)

// ParseAcceptLanguage picks the display language from an Accept-Language
// header. Only number formatting depends on it.
func ParseAcceptLanguage(header string) language.Tag {
	if header == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

func (d PageData) printer() *message.Printer {
	if d.Lang == language.Und {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(d.Lang)
}

// LangCode is the BCP 47 code of the page language
func (d PageData) LangCode() string {
	if d.Lang == language.Und {
		return "en"
	}
	return d.Lang.String()
}

// Number formats n with the grouping of the page language
func (d PageData) Number(n int) string {
	return d.printer().Sprintf("%d", n)
}

// Amount formats an amount in minor units with its currency symbol
func (d PageData) Amount(cents int, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	return d.printer().Sprint(currency.Symbol(unit.Amount(float64(cents) / 100)))
}

// AmountWithInterval appends the recurrence, e.g. "$ 5.00/month"
func (d PageData) AmountWithInterval(cents int, code string, interval domain.Interval) string {
	s := d.Amount(cents, code)
	if interval != domain.IntervalNone {
		s += "/" + string(interval)
	}
	return s
}

// Markdown renders user supplied markdown, keeping only safe markup
func Markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(ugc.SanitizeBytes(buf.Bytes()))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"add": func(a, b int) int {
			return a + b
		},
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	}
}
