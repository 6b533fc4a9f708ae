// Command seedcategories converts the marketplace taxonomy Excel file into a
// SQL seed file. The sheet has one row per leaf: Category, Subcategory,
// Sub-subcategory (optional).
// Usage: go run ./cmd/seedcategories <taxonomy.xlsx>
// Output: db/seeds/categories.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"templora/internal/domain"
)

type categoryEntry struct {
	id       uuid.UUID
	parentID *uuid.UUID
	name     string
	slug     string
	order    int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedcategories <taxonomy.xlsx>")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/categories.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	// Slug-keyed so repeated rows reuse the same node. Keys are scoped by the
	// parent slug chain to allow the same name under different parents.
	byPath := make(map[string]*categoryEntry)
	var entries []*categoryEntry
	order := 0

	intern := func(path string, parentID *uuid.UUID, name string) *uuid.UUID {
		if e, ok := byPath[path]; ok {
			return &e.id
		}
		order++
		e := &categoryEntry{
			id:       uuid.New(),
			parentID: parentID,
			name:     strings.TrimSpace(name),
			slug:     domain.Slugify(name),
			order:    order,
		}
		byPath[path] = e
		entries = append(entries, e)
		return &e.id
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue // header or blank
		}
		catSlug := domain.Slugify(row[0])
		parentID := intern(catSlug, nil, row[0])

		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			subSlug := catSlug + "/" + domain.Slugify(row[1])
			subID := intern(subSlug, parentID, row[1])

			if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
				intern(subSlug+"/"+domain.Slugify(row[2]), subID, row[2])
			}
		}
	}
	log.Printf("taxonomy: %d categories from %d rows", len(entries), len(rows)-1)

	if err := os.MkdirAll("db/seeds", 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	if err := w("-- Generated by cmd/seedcategories. Do not edit by hand."); err != nil {
		return err
	}
	for _, e := range entries {
		parent := "NULL"
		if e.parentID != nil {
			parent = fmt.Sprintf("'%s'", *e.parentID)
		}
		stmt := fmt.Sprintf(
			"INSERT INTO categories (id, parent_id, name, slug, sort_order, created_at, updated_at) VALUES ('%s', %s, '%s', '%s', %d, now(), now()) ON CONFLICT (slug) DO NOTHING;",
			e.id, parent, strings.ReplaceAll(e.name, "'", "''"), e.slug, e.order)
		if err := w(stmt); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	log.Printf("wrote %s", outPath)
	return nil
}
