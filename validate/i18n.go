package validate

import (
	"embed"

	"github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// I18n returns an initialized bundle of the issue message locales embedded
// with this package, for rendering Issue.Localize output in "en" or
// "zh-Hans".
func I18n() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	if err := bundle.LoadFS(localesFS, "locales/*.json"); err != nil {
		return nil, err
	}
	return bundle, nil
}
