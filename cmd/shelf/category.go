package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelf-go/internal/app"
	"shelf-go/internal/shelf"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("category add", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		parent, _ := cmd.Flags().GetString("parent")
		name := strings.TrimSpace(args[0])
		if name == "" {
			return errors.New("name must not be empty")
		}

		in := shelf.NewCategory{Name: name}
		if parent != "" {
			if _, ok := a.Repository().Category(parent); !ok {
				return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, parent)
			}
			in.ParentID = shelf.StringPtr(parent)
		}

		c, err := a.Repository().AddCategory(in)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", c.Name, c.ID)
		return nil
	}),
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	Args:    cobra.NoArgs,
	RunE: withApp("category list", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		repo := a.Repository()
		counts := bookmarkCounts(repo)

		var rows [][]string
		for _, c := range repo.Categories() {
			parent := "-"
			if c.ParentID != nil {
				parent = *c.ParentID
			}
			rows = append(rows, []string{c.ID, c.Name, parent, fmt.Sprint(counts[c.ID])})
		}
		fmt.Println(renderTable([]string{"ID", a.T("category.name"), "Parent", a.T("nav.all_bookmarks")}, rows))
		return nil
	}),
}

var categoryTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the category tree with bookmark counts",
	Args:  cobra.NoArgs,
	RunE: withApp("category tree", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		repo := a.Repository()
		fmt.Println(renderTree(repo.Categories(), bookmarkCounts(repo)))
		return nil
	}),
}

var categoryPathCmd = &cobra.Command{
	Use:   "path ID",
	Short: "Show the ancestry of a category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("category path", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		path := a.Repository().CategoryPath(args[0])
		if len(path) == 0 {
			return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, args[0])
		}
		fmt.Println(pathString(path))
		return nil
	}),
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: withApp("category rename", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		name := strings.TrimSpace(args[1])
		if name == "" {
			return errors.New("name must not be empty")
		}
		if err := a.Repository().UpdateCategory(args[0], shelf.CategoryPatch{Name: shelf.StringPtr(name)}); err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", args[0], name)
		return nil
	}),
}

var categoryMoveCmd = &cobra.Command{
	Use:   "move ID [PARENT]",
	Short: "Move a category under PARENT, or to the top level if PARENT is omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp("category move", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		parent := ""
		if len(args) == 2 {
			parent = args[1]
		}
		if err := a.MoveCategory(args[0], parent); err != nil {
			return err
		}
		fmt.Println(pathString(a.Repository().CategoryPath(args[0])))
		return nil
	}),
}

var categoryRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a category and move its bookmarks to another category",
	Args:    cobra.ExactArgs(1),
	RunE: withApp("category rm", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		yes, _ := cmd.Flags().GetBool("yes")
		c, ok := a.Repository().Category(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, args[0])
		}

		if !yes {
			ok, err := confirm(fmt.Sprintf("%s\n%s", a.T("category.delete_confirm"), c.Name), a.T("confirm.yes"), a.T("confirm.no"))
			if err != nil || !ok {
				return err
			}
		}

		if err := a.Repository().DeleteCategory(c.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", c.Name)
		return nil
	}),
}

func bookmarkCounts(repo *shelf.Repository) map[string]int {
	counts := make(map[string]int)
	for _, b := range repo.Bookmarks() {
		counts[b.CategoryID]++
	}
	return counts
}

func init() {
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryTreeCmd)
	categoryCmd.AddCommand(categoryPathCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryMoveCmd)
	categoryCmd.AddCommand(categoryRmCmd)

	categoryAddCmd.Flags().StringP("parent", "p", "", "Parent category id")
	categoryRmCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
