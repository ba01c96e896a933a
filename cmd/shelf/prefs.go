package main

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelf-go/internal/app"
	"shelf-go/internal/settings"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored theme and the colors it resolves to",
	Args:  cobra.NoArgs,
	RunE: withApp("theme show", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		systemDark, _ := cmd.Flags().GetBool("system-dark")
		t := a.Settings().Theme()
		p := settings.ResolveTheme(t, systemDark)

		wallpaper := "-"
		if t.CustomWallpaper != "" {
			wallpaper = abbreviate(t.CustomWallpaper, 48)
		}
		rows := [][]string{
			{a.T("theme.title"), themeMode(t)},
			{a.T("theme.color_scheme"), string(t.ColorScheme)},
			{a.T("theme.wallpaper"), wallpaper},
			{"Position", string(t.WallpaperPosition)},
			{a.T("theme.wallpaperBlur"), fmt.Sprintf("%dpx", t.WallpaperBlur)},
			{"Effective", map[bool]string{true: "dark", false: "light"}[p.Dark]},
		}

		vars := make([]string, 0, len(p.Vars))
		for k := range p.Vars {
			vars = append(vars, k)
		}
		slices.Sort(vars)
		for _, k := range vars {
			rows = append(rows, []string{k, abbreviate(p.Vars[k], 48)})
		}

		fmt.Println(renderTable([]string{"Setting", "Value"}, rows))
		return nil
	}),
}

var themeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change theme settings",
	Args:  cobra.NoArgs,
	RunE: withApp("theme set", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		flags := cmd.Flags()
		t := a.Settings().Theme()

		if flags.Changed("mode") {
			mode, _ := flags.GetString("mode")
			switch mode {
			case "light":
				t.DarkMode, t.UseSystemTheme = false, false
			case "dark":
				t.DarkMode, t.UseSystemTheme = true, false
			case "system":
				t.UseSystemTheme = true
			default:
				return fmt.Errorf("%w: mode %q (want light, dark or system)", settings.ErrInvalidSetting, mode)
			}
		}
		if flags.Changed("scheme") {
			v, _ := flags.GetString("scheme")
			t.ColorScheme = settings.ColorScheme(v)
		}
		if flags.Changed("position") {
			v, _ := flags.GetString("position")
			if v == "stretch" {
				v = string(settings.WallpaperStretch)
			}
			t.WallpaperPosition = settings.WallpaperPosition(v)
		}
		if flags.Changed("blur") {
			t.WallpaperBlur, _ = flags.GetInt("blur")
		}
		if flags.Changed("wallpaper") {
			v, _ := flags.GetString("wallpaper")
			image, err := wallpaperImage(v)
			if err != nil {
				return err
			}
			t.CustomWallpaper = image
		}

		if err := a.Settings().SaveTheme(t); err != nil {
			return err
		}
		fmt.Println(a.T("alert.success"))
		return nil
	}),
}

var langCmd = &cobra.Command{
	Use:   "lang [cn|en|toggle]",
	Short: "Show or change the interface language",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("lang", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		if len(args) == 0 {
			lang := a.Language()
			fmt.Printf("%s (%s)\n", lang, a.T("language."+lang))
			return nil
		}

		lang := args[0]
		if lang == "toggle" {
			next, err := a.Settings().ToggleLanguage()
			if err != nil {
				return err
			}
			lang = next
		} else if err := a.Settings().SetLanguage(lang); err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", a.T("language.title"), a.T("language."+lang))
		return nil
	}),
}

var layoutCmd = &cobra.Command{
	Use:   "layout [BOOKMARKS_PER_ROW]",
	Short: "Show or change how many bookmarks are shown per row",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp("layout", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		if len(args) == 0 {
			fmt.Println(a.Settings().Layout().BookmarksPerRow)
			return nil
		}

		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: bookmarks per row %q", settings.ErrInvalidSetting, args[0])
		}
		if err := a.Settings().SetBookmarksPerRow(n); err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}),
}

func themeMode(t settings.Theme) string {
	switch {
	case t.UseSystemTheme:
		return "system"
	case t.DarkMode:
		return "dark"
	default:
		return "light"
	}
}

// wallpaperImage turns a local image file into a data URL. Anything that is
// not an existing file (a URL, or "" to clear) is stored as given.
func wallpaperImage(v string) (string, error) {
	info, err := os.Stat(v)
	if v == "" || err != nil || info.IsDir() {
		return v, nil
	}

	content, err := os.ReadFile(v)
	if err != nil {
		return "", fmt.Errorf("reading wallpaper: %w", err)
	}
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(v)))
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %s is not an image", settings.ErrInvalidSetting, v)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)

	themeShowCmd.Flags().Bool("system-dark", false, "Resolve as if the system prefers dark mode")
	themeSetCmd.Flags().String("mode", "", "light, dark or system")
	themeSetCmd.Flags().String("scheme", "", "Color scheme: ocean, sunset or forest")
	themeSetCmd.Flags().String("position", "", "Wallpaper position: cover, contain or stretch")
	themeSetCmd.Flags().Int("blur", 0, "Wallpaper blur in pixels")
	themeSetCmd.Flags().String("wallpaper", "", "Wallpaper image file or URL, empty to clear")
}
