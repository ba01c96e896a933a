package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"shelf-go/internal/app"
	"shelf-go/internal/favicon"
	"shelf-go/internal/shelf"
)

var bookmarkCmd = &cobra.Command{
	Use:     "bookmark",
	Aliases: []string{"bm"},
	Short:   "Manage bookmarks",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add TITLE URL",
	Short: "Add a bookmark",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("bookmark add", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		categoryID, _ := cmd.Flags().GetString("category")
		title, url := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if title == "" || url == "" {
			return errors.New("title and url must not be empty")
		}
		if categoryID == "" {
			categoryID = a.Repository().DefaultCategoryID()
		} else if _, ok := a.Repository().Category(categoryID); !ok {
			return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, categoryID)
		}

		b, err := a.Repository().AddBookmark(shelf.NewBookmark{
			Title:      title,
			URL:        url,
			CategoryID: categoryID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", b.Title, b.ID)
		return nil
	}),
}

var bookmarkListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bookmarks",
	Args:    cobra.NoArgs,
	RunE: withApp("bookmark list", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		categoryID, _ := cmd.Flags().GetString("category")
		repo := a.Repository()

		var bookmarks []shelf.Bookmark
		if categoryID != "" {
			if _, ok := repo.Category(categoryID); !ok {
				return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, categoryID)
			}
			bookmarks = repo.BookmarksByCategory(categoryID)
		} else {
			bookmarks = repo.Bookmarks()
		}

		if len(bookmarks) == 0 {
			fmt.Println(a.T("common.no_data"))
			return nil
		}

		rows := make([][]string, 0, len(bookmarks))
		for _, b := range bookmarks {
			category := a.T("bookmark.noCategory")
			if c, ok := repo.Category(b.CategoryID); ok {
				category = c.Name
			}
			rows = append(rows, []string{b.ID, b.Title, favicon.Domain(b.URL), category})
		}
		fmt.Println(renderTable([]string{"ID", a.T("bookmark.title"), a.T("bookmark.url"), a.T("bookmark.category")}, rows))
		return nil
	}),
}

var bookmarkEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a bookmark's title, url or category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("bookmark edit", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		var patch shelf.BookmarkPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			patch.Title = shelf.StringPtr(v)
		}
		if flags.Changed("url") {
			v, _ := flags.GetString("url")
			patch.URL = shelf.StringPtr(v)
		}
		if flags.Changed("category") {
			v, _ := flags.GetString("category")
			if _, ok := a.Repository().Category(v); !ok {
				return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, v)
			}
			patch.CategoryID = shelf.StringPtr(v)
		}
		if patch == (shelf.BookmarkPatch{}) {
			return errors.New("nothing to change, pass --title, --url or --category")
		}

		if err := a.Repository().UpdateBookmark(args[0], patch); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	}),
}

var bookmarkRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: withApp("bookmark rm", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		yes, _ := cmd.Flags().GetBool("yes")
		b, ok := a.Repository().Bookmark(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", shelf.ErrBookmarkNotFound, args[0])
		}

		if !yes {
			ok, err := confirm(fmt.Sprintf("%s\n%s", a.T("bookmark.delete_confirm"), b.Title), a.T("confirm.yes"), a.T("confirm.no"))
			if err != nil || !ok {
				return err
			}
		}

		if err := a.Repository().DeleteBookmark(b.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", b.Title)
		return nil
	}),
}

var bookmarkOpenCmd = &cobra.Command{
	Use:   "open QUERY...",
	Short: "Open a bookmark in the browser by id or by title/url search",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp("bookmark open", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		matches := searchBookmarks(a.Repository(), strings.Join(args, " "))
		if len(matches) == 0 {
			fmt.Println(a.T("common.no_data"))
			return nil
		}

		picked := matches[0].URL
		if len(matches) > 1 {
			options := make([]huh.Option[string], len(matches))
			for i, b := range matches {
				options[i] = huh.NewOption(fmt.Sprintf("%s  %s", b.Title, favicon.Domain(b.URL)), b.URL)
			}
			err := huh.NewSelect[string]().Title("Pick your link").Options(options...).Value(&picked).Run()
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		fmt.Printf("Opening %s\n", picked)
		return browser.OpenURL(picked)
	}),
}

// searchBookmarks returns the bookmark whose id is query, or else every
// bookmark whose title or url contains query, ignoring case.
func searchBookmarks(repo *shelf.Repository, query string) []shelf.Bookmark {
	if b, ok := repo.Bookmark(query); ok {
		return []shelf.Bookmark{b}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var out []shelf.Bookmark
	for _, b := range repo.Bookmarks() {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.URL), q) {
			out = append(out, b)
		}
	}
	return out
}

func init() {
	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkListCmd)
	bookmarkCmd.AddCommand(bookmarkEditCmd)
	bookmarkCmd.AddCommand(bookmarkRmCmd)
	bookmarkCmd.AddCommand(bookmarkOpenCmd)

	bookmarkAddCmd.Flags().StringP("category", "c", "", "Category id (defaults to the first category)")
	bookmarkListCmd.Flags().StringP("category", "c", "", "Only list bookmarks in this category")
	bookmarkEditCmd.Flags().String("title", "", "New title")
	bookmarkEditCmd.Flags().String("url", "", "New url")
	bookmarkEditCmd.Flags().StringP("category", "c", "", "Move to this category id")
	bookmarkRmCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
