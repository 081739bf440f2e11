package schema

// SystemPreferences holds display preferences.
type SystemPreferences struct {
	Theme string `json:"theme"`
}

// Themes accepted by SystemPreferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const msgTheme = "Please select a theme."

// ValidateSystemPreferences checks p. There is no implicit theme; it must be chosen.
func ValidateSystemPreferences(p SystemPreferences) Result[SystemPreferences] {
	errs := FieldErrors{}
	errs.check("theme", p.Theme, "required,oneof="+ThemeLight+" "+ThemeDark, msgTheme)
	return newResult(p, errs)
}
