package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"shelf-go/internal/shelf"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// renderTable draws a bordered table on a terminal and tab-separated lines
// otherwise, so output stays greppable when piped.
func renderTable(headers []string, rows [][]string) string {
	if !stdoutIsTerminal() {
		return plainTable(headers, rows)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r...)
	}
	return t.String()
}

func plainTable(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, "\t"))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(r, "\t"))
	}
	return b.String()
}

// renderTree draws the category forest with box-drawing connectors.
// counts maps category id to bookmark count. Each category is printed at
// most once even if the stored parent links form a loop.
func renderTree(categories []shelf.Category, counts map[string]int) string {
	children := make(map[string][]shelf.Category)
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	var roots []shelf.Category
	for _, c := range categories {
		// Orphans whose parent no longer exists are shown at the top level.
		if c.IsRoot() || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var b strings.Builder
	visited := make(map[string]bool)

	var walk func(c shelf.Category, prefix string, last, top bool)
	walk = func(c shelf.Category, prefix string, last, top bool) {
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true

		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}
		if top {
			connector, next = "", ""
		}
		fmt.Fprintf(&b, "%s%s%s (%d)\n", prefix, connector, c.Name, counts[c.ID])

		kids := children[c.ID]
		for i, k := range kids {
			walk(k, prefix+next, i == len(kids)-1, false)
		}
	}

	for _, r := range roots {
		walk(r, "", true, true)
	}
	// Categories caught in a parent loop have no root; list them anyway.
	for _, c := range categories {
		walk(c, "", true, true)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// pathString joins category names root first.
func pathString(path []shelf.Category) string {
	names := make([]string, len(path))
	for i, c := range path {
		names[i] = c.Name
	}
	return strings.Join(names, " / ")
}

// confirm asks a yes/no question. Without a terminal it refuses, so scripts
// must pass --yes.
func confirm(title, yes, no string) (bool, error) {
	if !stdinIsTerminal() {
		return false, errors.New("refusing to prompt without a terminal, pass --yes")
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative(yes).
		Negative(no).
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// readPassphrase reads a passphrase without echo on a terminal, or a single
// line from stdin otherwise.
func readPassphrase(prompt string) (string, error) {
	if !stdinIsTerminal() {
		return readLine(os.Stdin)
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func readNewPassphrase() (string, error) {
	p1, err := readPassphrase("New backup passphrase: ")
	if err != nil {
		return "", err
	}
	if p1 == "" {
		return "", errors.New("passphrase must not be empty")
	}
	if !stdinIsTerminal() {
		return p1, nil
	}
	p2, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if p1 != p2 {
		return "", errors.New("passphrases do not match")
	}
	return p1, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
