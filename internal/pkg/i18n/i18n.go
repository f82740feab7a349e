package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator localises user-facing messages.
type Translator struct {
	bundle *goi18n.Bundle
}

// New loads the embedded en and id message files; English is the fallback.
func New() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, file := range []string{"locales/active.en.json", "locales/active.id.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Localize renders messageID for the accept-language value lang. Unknown IDs come back as
// the ID itself so callers always have something to show.
func (t *Translator) Localize(lang, messageID string, data map[string]any) string {
	localizer := goi18n.NewLocalizer(t.bundle, lang)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
