package domain

// DefaultLocale is assumed when a user has no locale preference stored.
const DefaultLocale = "en"

// supportedLocales is the set of interface translations the platform ships.
var supportedLocales = map[string]struct{}{
	"ar":    {},
	"bg":    {},
	"ca":    {},
	"cs":    {},
	"de":    {},
	"en":    {},
	"eo":    {},
	"es":    {},
	"fa":    {},
	"fi":    {},
	"fr":    {},
	"he":    {},
	"hr":    {},
	"hu":    {},
	"id":    {},
	"io":    {},
	"it":    {},
	"ja":    {},
	"ko":    {},
	"nl":    {},
	"no":    {},
	"oc":    {},
	"pl":    {},
	"pt":    {},
	"pt-BR": {},
	"ru":    {},
	"th":    {},
	"tr":    {},
	"uk":    {},
	"zh-CN": {},
	"zh-HK": {},
	"zh-TW": {},
}

// SupportedLocale reports whether the code is a shipped translation.
func SupportedLocale(code string) bool {
	_, ok := supportedLocales[code]
	return ok
}

// SupportedLocales returns the registry as a slice for API consumers.
// Order is unspecified.
func SupportedLocales() []string {
	out := make([]string, 0, len(supportedLocales))
	for code := range supportedLocales {
		out = append(out, code)
	}
	return out
}
