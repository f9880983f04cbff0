package services

import (
	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/validation"

	"go.uber.org/zap"
)

// Language is the kiosk display language. It survives session changes.
func (d *Diner) Language() i18n.Language {
	d.langMu.Lock()
	defer d.langMu.Unlock()
	return d.lang
}

// SetLanguage switches the display language and saves it locally. Without
// a working local store the choice lasts until restart.
func (d *Diner) SetLanguage(value string) (i18n.Language, error) {
	lang, ok := i18n.Parse(value)
	if !ok {
		return d.Language(), &validation.Error{Field: "language", Message: "must be one of en ar"}
	}

	d.langMu.Lock()
	d.lang = lang
	d.langMu.Unlock()

	if err := d.store.SetLanguage(lang); err != nil {
		d.logger.Warn("language not saved", zap.String("language", string(lang)), zap.Error(err))
	}
	d.logger.Info("display language changed", zap.String("language", string(lang)))
	return lang, nil
}

// T is the message for key in the current display language.
func (d *Diner) T(key string) string {
	return i18n.T(d.Language(), key)
}
