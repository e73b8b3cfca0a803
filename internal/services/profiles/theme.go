package profilesvc

// Theme is a named colour scheme.
type Theme struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Themes lists the selectable themes.
var Themes = []Theme{
	{ID: "default", Name: "Rosa"},
	{ID: "purple", Name: "Roxo"},
	{ID: "green", Name: "Verde"},
}

// ValidTheme reports whether id names a known theme.
func ValidTheme(id string) bool {
	for _, t := range Themes {
		if t.ID == id {
			return true
		}
	}
	return false
}
