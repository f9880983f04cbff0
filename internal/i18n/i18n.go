package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Language is a supported display language, stored as its base tag.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"

	Default = English
)

var (
	supported = []language.Tag{language.English, language.Arabic}
	matcher   = language.NewMatcher(supported)
)

// Parse accepts any tag whose base language is supported ("ar-SA" → ar).
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	base, _ := supported[idx].Base()
	return Language(base.String()), true
}

// OrDefault maps unknown or empty values to Default.
func OrDefault(s string) Language {
	if lang, ok := Parse(s); ok {
		return lang
	}
	return Default
}

func (l Language) tag() language.Tag {
	if l == Arabic {
		return language.Arabic
	}
	return language.English
}

// Dir is the text direction the UI lays out in.
func (l Language) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Name picks the Arabic name in Arabic when the backend has one.
func Name(lang Language, name, nameAr string) string {
	if lang == Arabic && strings.TrimSpace(nameAr) != "" {
		return nameAr
	}
	return name
}

// T returns the message for key in lang. Unknown keys come back as is.
func T(lang Language, key string) string {
	if _, ok := messages[key]; !ok {
		return key
	}
	return printers[lang.tag()].Sprintf(key)
}

var printers = func() map[language.Tag]*message.Printer {
	b := catalog.NewBuilder()
	for key, m := range messages {
		if err := b.SetString(language.English, key, m.en); err != nil {
			panic(err)
		}
		if err := b.SetString(language.Arabic, key, m.ar); err != nil {
			panic(err)
		}
	}
	out := make(map[language.Tag]*message.Printer, len(supported))
	for _, tag := range supported {
		out[tag] = message.NewPrinter(tag, message.Catalog(b))
	}
	return out
}()
