// Package translation resolves a plugin's translatable display strings
// (action/setup display messages, param/state/event display names) into the
// caller's requested locale, falling back to the caller-supplied
// untranslated text when no catalog entry exists. Grounded on how takitani-miau resolves its own UI
// locale with golang.org/x/text/language, extended here with
// golang.org/x/text/message.Catalog to hold each plugin's per-locale
// string table.
package translation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/model"
)

// Service owns one catalog.Builder shared by all plugins (message keys are
// prefixed with the plugin id), filled through LoadPluginTranslations from
// the tables cmd/hubd reads out of each plugin directory's
// "*.translations.yaml" files, and a language.Matcher to pick the best
// supported locale for a request.
type Service struct {
	builder  *catalog.Builder
	matcher  language.Matcher
	supported []language.Tag
}

// New builds an empty Service. Call LoadPluginTranslations per loaded
// plugin as the TypeRegistry picks up its metadata.
func New() *Service {
	b := catalog.NewBuilder()
	return &Service{builder: b, matcher: language.NewMatcher([]language.Tag{language.English})}
}

// LoadPluginTranslations registers one plugin's locale -> (id -> string)
// table. pluginID is folded into the message key to keep different
// plugins' ids from colliding in the shared catalog.
func (s *Service) LoadPluginTranslations(pluginID model.ID, table map[string]map[string]string) {
	for locale, entries := range table {
		tag, err := language.Parse(locale)
		if err != nil {
			logger.Translation().Warn().Str("plugin", pluginID.String()).Str("locale", locale).Msg("invalid locale tag, skipping")
			continue
		}
		s.supported = append(s.supported, tag)
		for id, text := range entries {
			key := pluginID.String() + ":" + id
			if err := s.builder.SetString(tag, key, text); err != nil {
				logger.Translation().Warn().Err(err).Str("plugin", pluginID.String()).Str("id", id).Msg("failed to register translation")
			}
		}
	}
	if len(s.supported) > 0 {
		s.matcher = language.NewMatcher(s.supported)
	}
}

// Translate resolves id (a plugin's translatable display string id) into
// locale, falling back to fallback (the plugin's declared default-language
// text) when the catalog has no entry for that id/locale pair.
func (s *Service) Translate(pluginID model.ID, id, locale, fallback string) string {
	if id == "" {
		return fallback
	}
	tag, _, confidence := s.matcher.Match(parseLocaleOrDefault(locale))
	if confidence == language.No {
		return fallback
	}
	p := message.NewPrinter(tag, message.Catalog(s.builder))
	key := pluginID.String() + ":" + id
	out := p.Sprintf(key)
	if out == key {
		return fallback
	}
	return out
}

func parseLocaleOrDefault(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
