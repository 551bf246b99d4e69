package config

import "strings"

// GetAppSettingOrDefault returns app.settings[key] or def when the key is
// absent or blank. Keys match case-insensitively because viper lowercases
// map keys read from files and the environment.
func (c *Config) GetAppSettingOrDefault(key, def string) string {
	if c == nil {
		return def
	}
	return c.App.GetSettingOrDefault(key, def)
}

// GetSettingOrDefault is the AppConfig form of GetAppSettingOrDefault.
func (a AppConfig) GetSettingOrDefault(key, def string) string {
	if v, ok := a.Settings[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	for k, v := range a.Settings {
		if strings.EqualFold(k, key) && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return def
}
