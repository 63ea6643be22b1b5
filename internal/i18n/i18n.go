// Package i18n holds the user-facing message catalogs for the TUI and REPL.
package i18n

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// catalogs maps a normalized locale to its messages. English is complete;
// other catalogs fall back to it key by key.
var catalogs = map[string]map[string]string{
	"en":    EnMessages,
	"zh-CN": ZhCNMessages,
}

// I18n 按 locale 解析消息键，缺失时回退英文
// I18n resolves message keys for one locale, falling back to English.
type I18n struct {
	locale  string
	primary map[string]string
}

// New creates an i18n instance. An empty locale is detected from the
// environment; a locale without a catalog renders English.
func New(locale string) *I18n {
	if strings.TrimSpace(locale) == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	primary, ok := catalogs[locale]
	if !ok {
		locale, primary = "en", EnMessages
	}
	return &I18n{locale: locale, primary: primary}
}

// T formats the message for key. Unknown keys are returned unchanged.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.primary[key]
	if !ok {
		if tmpl, ok = EnMessages[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale is the locale whose catalog is in use.
func (i *I18n) Locale() string { return i.locale }

// Supported lists locales that have a catalog, sorted.
func Supported() []string {
	out := make([]string, 0, len(catalogs))
	for k := range catalogs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DetectLocale 依次读取 TASKPRO_LANG、LC_ALL、LC_MESSAGES、LANG
// DetectLocale reads TASKPRO_LANG first, then the POSIX locale variables.
func DetectLocale() string {
	for _, env := range []string{"TASKPRO_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

// normalizeLocale turns "zh_CN.UTF-8" into "zh-CN". Every Chinese variant maps
// to zh-CN and every English one to en; anything else keeps its region.
func normalizeLocale(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), ".")
	switch s {
	case "", "C", "POSIX":
		return "en"
	}
	s = strings.ReplaceAll(s, "_", "-")
	switch lang, _, _ := strings.Cut(strings.ToLower(s), "-"); lang {
	case "zh":
		return "zh-CN"
	case "en":
		return "en"
	}
	return s
}
