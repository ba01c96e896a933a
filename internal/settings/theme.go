package settings

import (
	"fmt"
	"strconv"
	"strings"
)

type WallpaperPosition string

const (
	WallpaperCover   WallpaperPosition = "cover"
	WallpaperContain WallpaperPosition = "contain"
	WallpaperStretch WallpaperPosition = "100% 100%"
)

type ColorScheme string

const (
	SchemeOcean  ColorScheme = "ocean"
	SchemeSunset ColorScheme = "sunset"
	SchemeForest ColorScheme = "forest"
)

// Theme is the stored theme document.
type Theme struct {
	DarkMode          bool              `json:"darkMode"`
	UseSystemTheme    bool              `json:"useSystemTheme"`
	CustomWallpaper   string            `json:"customWallpaper"`
	WallpaperPosition WallpaperPosition `json:"wallpaperPosition"`
	WallpaperBlur     int               `json:"wallpaperBlur"`
	ColorScheme       ColorScheme       `json:"colorScheme"`
}

func DefaultTheme() Theme {
	return Theme{
		DarkMode:          false,
		UseSystemTheme:    true,
		CustomWallpaper:   "",
		WallpaperPosition: WallpaperCover,
		WallpaperBlur:     5,
		ColorScheme:       SchemeOcean,
	}
}

// IsDark resolves the effective mode given the operating system's current
// preference.
func (t Theme) IsDark(systemDark bool) bool {
	if t.UseSystemTheme {
		return systemDark
	}
	return t.DarkMode
}

// Theme returns the stored theme merged over the defaults. Fields absent
// from the stored document keep their default values.
// Fields holding a value outside their accepted set are reset to the
// default, so a hand-edited document cannot block later updates.
func (s *Settings) Theme() Theme {
	t := DefaultTheme()
	if !s.load(ThemeKey, &t) {
		return DefaultTheme()
	}
	def := DefaultTheme()
	switch t.WallpaperPosition {
	case WallpaperCover, WallpaperContain, WallpaperStretch:
	default:
		t.WallpaperPosition = def.WallpaperPosition
	}
	if _, ok := palettes[t.ColorScheme]; !ok {
		t.ColorScheme = def.ColorScheme
	}
	if t.WallpaperBlur < 0 {
		t.WallpaperBlur = def.WallpaperBlur
	}
	return t
}

// Validate checks the enumerated fields and the blur radius.
func (t Theme) Validate() error {
	switch t.WallpaperPosition {
	case WallpaperCover, WallpaperContain, WallpaperStretch:
	default:
		return fmt.Errorf("%w: wallpaper position %q", ErrInvalidSetting, t.WallpaperPosition)
	}
	if _, ok := palettes[t.ColorScheme]; !ok {
		return fmt.Errorf("%w: color scheme %q", ErrInvalidSetting, t.ColorScheme)
	}
	if t.WallpaperBlur < 0 {
		return fmt.Errorf("%w: wallpaper blur must not be negative, got %d", ErrInvalidSetting, t.WallpaperBlur)
	}
	return nil
}

// SaveTheme validates and stores t.
func (s *Settings) SaveTheme(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.save(ThemeKey, t)
}

func (s *Settings) updateTheme(fn func(*Theme)) error {
	t := s.Theme()
	fn(&t)
	return s.SaveTheme(t)
}

// SetDarkMode stores an explicit light/dark choice and stops following the
// system theme.
func (s *Settings) SetDarkMode(dark bool) error {
	return s.updateTheme(func(t *Theme) {
		t.DarkMode = dark
		t.UseSystemTheme = false
	})
}

func (s *Settings) SetUseSystemTheme(on bool) error {
	return s.updateTheme(func(t *Theme) { t.UseSystemTheme = on })
}

// SetWallpaper stores an image URL or data URI. An empty value removes the
// wallpaper.
func (s *Settings) SetWallpaper(image string) error {
	return s.updateTheme(func(t *Theme) { t.CustomWallpaper = image })
}

func (s *Settings) SetWallpaperPosition(p WallpaperPosition) error {
	return s.updateTheme(func(t *Theme) { t.WallpaperPosition = p })
}

func (s *Settings) SetWallpaperBlur(px int) error {
	return s.updateTheme(func(t *Theme) { t.WallpaperBlur = px })
}

func (s *Settings) SetColorScheme(c ColorScheme) error {
	return s.updateTheme(func(t *Theme) { t.ColorScheme = c })
}

type colors struct {
	primary, danger string
}

var palettes = map[ColorScheme]struct{ light, dark colors }{
	SchemeOcean: {
		light: colors{"#1a73e8", "#e53935"},
		dark:  colors{"#4ecdc4", "#ff6b6b"},
	},
	SchemeSunset: {
		light: colors{"#f43b47", "#e53935"},
		dark:  colors{"#ff9b44", "#f43b47"},
	},
	SchemeForest: {
		light: colors{"#42b883", "#e53935"},
		dark:  colors{"#42b883", "#ff6b6b"},
	},
}

// ColorSchemes lists the accepted scheme names.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{SchemeOcean, SchemeSunset, SchemeForest}
}

// Presentation is a resolved theme: the effective mode and the CSS custom
// properties a page applies to its root element.
type Presentation struct {
	Dark         bool              `json:"dark"`
	ColorScheme  ColorScheme       `json:"colorScheme"`
	HasWallpaper bool              `json:"hasWallpaper"`
	Vars         map[string]string `json:"vars"`
}

// ResolveTheme computes the presentation for t. An unknown color scheme
// renders as ocean.
func ResolveTheme(t Theme, systemDark bool) Presentation {
	p := Presentation{
		Dark:        t.IsDark(systemDark),
		ColorScheme: t.ColorScheme,
		Vars:        make(map[string]string),
	}

	pal, ok := palettes[t.ColorScheme]
	if !ok {
		p.ColorScheme = SchemeOcean
		pal = palettes[SchemeOcean]
	}
	c := pal.light
	if p.Dark {
		c = pal.dark
	}

	p.Vars["--primary-color"] = c.primary
	p.Vars["--danger-color"] = c.danger
	if rgb, ok := hexToRGB(c.primary); ok {
		p.Vars["--primary-color-rgb"] = rgb
	}
	if rgb, ok := hexToRGB(c.danger); ok {
		p.Vars["--danger-color-rgb"] = rgb
	}

	if t.CustomWallpaper != "" {
		p.HasWallpaper = true
		p.Vars["--wallpaper-url"] = "url(" + t.CustomWallpaper + ")"
		p.Vars["--wallpaper-position"] = string(t.WallpaperPosition)
		p.Vars["--wallpaper-blur"] = strconv.Itoa(t.WallpaperBlur) + "px"
	}
	return p
}

// hexToRGB turns "#rrggbb" into "r, g, b".
func hexToRGB(hex string) (string, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "", false
	}
	parts := make([]string, 3)
	for i := range parts {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return "", false
		}
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ", "), true
}
