package filters

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported output locales. Order matters: the first entry is the matcher
// default for anything unrecognized.
var supportedLocales = []language.Tag{
	language.English,
	language.Russian,
	language.MustParse("kk"),
}

var localeCodes = []string{"en", "ru", "kk"}

var localeMatcher = language.NewMatcher(supportedLocales)

// Historical client code for Kazakh; kept for compatibility with stored
// client preferences.
var localeAliases = map[string]string{
	"kz": "kk",
}

// ResolveLocale maps an arbitrary client language code onto one of the
// supported output locales, defaulting to English.
func ResolveLocale(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "en"
	}
	if alias, ok := localeAliases[code]; ok {
		code = alias
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "en"
	}

	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	return localeCodes[idx]
}

var localeNames = map[string]string{
	"en": "English",
	"ru": "Russian",
	"kk": "Kazakh",
}

// LocaleName returns the English name of a locale for prompt text.
func LocaleName(code string) string {
	if name, ok := localeNames[code]; ok {
		return name
	}
	return "English"
}

var fallbackTexts = map[string]map[string]string{
	"books": {
		"ru": "Рекомендовано специально для вас",
		"kk": "Сіз үшін ұсынылған",
		"en": "Specially recommended for you",
	},
	"movies": {
		"ru": "Популярный выбор зрителей",
		"kk": "Көрермендердің танымал таңдауы",
		"en": "Popular audience choice",
	},
	"music": {
		"ru": "Подобрано для вашего настроения",
		"kk": "Сіздің көңіл-күйіңізге сай",
		"en": "Curated for your mood",
	},
}

// FallbackText returns the localized placeholder sentence used when a
// candidate has no description of its own.
func FallbackText(kind, locale string) string {
	texts, ok := fallbackTexts[kind]
	if !ok {
		return "Recommended for you"
	}
	if text, ok := texts[locale]; ok {
		return text
	}
	return texts["en"]
}
