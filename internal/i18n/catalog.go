package i18n

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashwch/sessionctl/internal/appdirs"
)

// Label is the localized text of one session intent.
type Label struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Catalog struct {
	Locale  string           `json:"locale"`
	Intents map[string]Label `json:"intents"`
}

func LoadCatalog(requestedLocale string) Catalog {
	locale := NormalizeLocale(requestedLocale)
	if locale == "" {
		locale = DetectLocale()
	}
	if locale == "" {
		locale = "en"
	}
	base := baseCatalogForLocale(locale)

	if override, ok := loadCommunityCatalog(locale); ok {
		merged := mergeCatalog(base, override)
		if strings.TrimSpace(override.Locale) != "" {
			merged.Locale = NormalizeLocale(override.Locale)
		} else {
			merged.Locale = locale
		}
		return merged
	}

	base.Locale = locale
	return base
}

// IntentLabel returns the localized title and description for an intent
// name, empty when the catalog has none.
func (c Catalog) IntentLabel(name string) (string, string) {
	label, ok := c.Intents[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", ""
	}
	return label.Title, label.Description
}

func baseCatalogForLocale(locale string) Catalog {
	normalized := strings.ToLower(NormalizeLocale(locale))
	switch {
	case strings.HasPrefix(normalized, "de"):
		// German first, English fallback retained.
		base := mergeCatalog(defaultEnglishCatalog(), defaultGermanCatalog())
		base.Locale = "de"
		return base
	default:
		base := defaultEnglishCatalog()
		base.Locale = "en"
		return base
	}
}

func DetectLocale() string {
	candidates := []string{
		os.Getenv("SESSIONCTL_LOCALE"),
		os.Getenv("LC_ALL"),
		os.Getenv("LC_MESSAGES"),
		os.Getenv("LANG"),
	}
	for _, candidate := range candidates {
		if normalized := NormalizeLocale(candidate); normalized != "" {
			return normalized
		}
	}
	return "en"
}

func NormalizeLocale(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.Split(trimmed, ".")[0]
	trimmed = strings.Split(trimmed, "@")[0]
	trimmed = strings.ReplaceAll(trimmed, "_", "-")

	parts := strings.Split(trimmed, "-")
	if len(parts) == 1 {
		lang := strings.ToLower(parts[0])
		if !isValidLocaleToken(lang, true) {
			return ""
		}
		return lang
	}
	lang := strings.ToLower(parts[0])
	region := strings.ToUpper(parts[1])
	if !isValidLocaleToken(lang, true) {
		return ""
	}
	if region == "" {
		return lang
	}
	if !isValidLocaleToken(strings.ToLower(region), false) {
		return ""
	}
	return lang + "-" + region
}

func isValidLocaleToken(token string, lettersOnly bool) bool {
	if len(token) < 2 || len(token) > 8 {
		return false
	}
	for _, r := range token {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if !lettersOnly && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func loadCommunityCatalog(locale string) (Catalog, bool) {
	localesDir, err := appdirs.LocalesDir()
	if err != nil {
		return Catalog{}, false
	}

	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return Catalog{}, false
	}
	lang := normalized
	if idx := strings.Index(lang, "-"); idx > 0 {
		lang = lang[:idx]
	}

	paths := []string{
		filepath.Join(localesDir, normalized+".json"),
	}
	if lang != normalized {
		paths = append(paths, filepath.Join(localesDir, lang+".json"))
	}

	for _, path := range paths {
		loaded, ok := loadCatalogFile(path)
		if ok {
			return loaded, true
		}
	}
	return Catalog{}, false
}

func loadCatalogFile(path string) (Catalog, bool) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, false
	}
	var catalog Catalog
	if err := json.Unmarshal(bytes, &catalog); err != nil {
		return Catalog{}, false
	}
	return catalog, true
}

// mergeCatalog overlays the non-empty fields of override onto base.
func mergeCatalog(base Catalog, override Catalog) Catalog {
	merged := Catalog{
		Locale:  base.Locale,
		Intents: make(map[string]Label, len(base.Intents)),
	}
	for name, label := range base.Intents {
		merged.Intents[name] = label
	}
	for name, label := range override.Intents {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		current := merged.Intents[name]
		if title := strings.TrimSpace(label.Title); title != "" {
			current.Title = title
		}
		if description := strings.TrimSpace(label.Description); description != "" {
			current.Description = description
		}
		merged.Intents[name] = current
	}
	return merged
}

func defaultEnglishCatalog() Catalog {
	return Catalog{
		Locale: "en",
		Intents: map[string]Label{
			"lock":      {Title: "Lock", Description: "Lock the session"},
			"logout":    {Title: "Logout", Description: "Quit the session"},
			"suspend":   {Title: "Suspend", Description: "Suspend to memory"},
			"hibernate": {Title: "Hibernate", Description: "Suspend to disk"},
			"reboot":    {Title: "Reboot", Description: "Restart the machine"},
			"poweroff":  {Title: "Poweroff", Description: "Shut down the machine"},
		},
	}
}

func defaultGermanCatalog() Catalog {
	return Catalog{
		Locale: "de",
		Intents: map[string]Label{
			"lock":      {Title: "Sperren", Description: "Sitzung sperren"},
			"logout":    {Title: "Abmelden", Description: "Sitzung beenden"},
			"suspend":   {Title: "Bereitschaft", Description: "In den Arbeitsspeicher schlafen legen"},
			"hibernate": {Title: "Ruhezustand", Description: "Auf die Festplatte schlafen legen"},
			"reboot":    {Title: "Neustarten", Description: "Den Rechner neu starten"},
			"poweroff":  {Title: "Ausschalten", Description: "Den Rechner herunterfahren"},
		},
	}
}
