package i18n

import (
	_ "embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/active.en.json
var localeEN []byte

var (
	once      sync.Once
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
)

// Init parses the embedded catalogs. Safe to call more than once.
func Init() {
	once.Do(func() {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
		bundle.MustParseMessageFileBytes(localeEN, "active.en.json")
		localizer = goi18n.NewLocalizer(bundle, language.English.String())
	})
}

// Load adds an extra catalog file on top of the embedded one.
func Load(path string) error {
	Init()
	_, err := bundle.LoadMessageFile(path)
	return err
}

// T resolves a message id with optional template data. Unknown ids come back
// as the id itself so a missing translation never hides a denial.
func T(id string, data map[string]interface{}) string {
	Init()
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
