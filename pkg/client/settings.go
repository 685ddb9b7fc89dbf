package client

// Settings are the user's presentation preferences. The dark mode flag is the
// only one persisted.
type Settings struct {
	DarkMode bool `json:"darkMode"`
}

// Theme names the color scheme matching the settings.
func (s Settings) Theme() string {
	if s.DarkMode {
		return "dark"
	}
	return "light"
}
