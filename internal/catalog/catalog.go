// Package catalog loads the exercise metadata table (megaGym-style CSV) and
// answers case-insensitive lookups by exercise title.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Entry is one exercise row of the catalog.
type Entry struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	BodyPart    string   `json:"bodyPart"`
	Equipment   string   `json:"equipment"`
	Level       string   `json:"level,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingDesc  string   `json:"ratingDesc,omitempty"`
}

// Catalog is an immutable exercise table. Safe for concurrent use.
type Catalog struct {
	entries []Entry
	byTitle map[string]int
}

// Lookup is the read side of a catalog as used by the recommendation engine.
type Lookup interface {
	Lookup(name string) (Entry, bool)
}

var _ Lookup = (*Catalog)(nil)

// required columns; the rest are optional.
const (
	colTitle     = "title"
	colBodyPart  = "bodypart"
	colEquipment = "equipment"
)

// Load reads a catalog CSV from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse reads a catalog CSV. Columns are located by header name, so column
// order is free and an unnamed leading index column is ignored. Rows without
// a title are skipped; on duplicate titles the first row wins.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty catalog")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if key != "" {
			cols[key] = i
		}
	}
	for _, name := range []string{colTitle, colBodyPart, colEquipment} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	c := &Catalog{byTitle: make(map[string]int)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		e := Entry{
			Title:       field(record, colTitle),
			Description: field(record, "desc"),
			Type:        field(record, "type"),
			BodyPart:    field(record, colBodyPart),
			Equipment:   field(record, colEquipment),
			Level:       field(record, "level"),
			RatingDesc:  field(record, "ratingdesc"),
		}
		if e.Title == "" {
			continue
		}
		if v := field(record, "rating"); v != "" {
			if rating, err := strconv.ParseFloat(v, 64); err == nil {
				e.Rating = &rating
			}
		}
		c.add(e)
	}
	return c, nil
}

// New builds a catalog from entries, keeping the first entry per title.
func New(entries []Entry) *Catalog {
	c := &Catalog{byTitle: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

func (c *Catalog) add(e Entry) {
	key := normalize(e.Title)
	if _, dup := c.byTitle[key]; dup {
		return
	}
	c.byTitle[key] = len(c.entries)
	c.entries = append(c.entries, e)
}

// Lookup finds an exercise by exact title, ignoring case.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byTitle[normalize(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of exercises in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Search returns exercises matching body part and equipment (case-insensitive,
// empty means any), in file order. limit <= 0 means no limit.
func (c *Catalog) Search(bodyPart, equipment string, limit int) []Entry {
	result := []Entry{}
	if c == nil {
		return result
	}
	for _, e := range c.entries {
		if bodyPart != "" && !strings.EqualFold(e.BodyPart, bodyPart) {
			continue
		}
		if equipment != "" && !strings.EqualFold(e.Equipment, equipment) {
			continue
		}
		result = append(result, e)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// BodyParts returns the distinct body parts in the catalog, sorted.
func (c *Catalog) BodyParts() []string {
	parts := []string{}
	if c == nil {
		return parts
	}
	seen := make(map[string]bool)
	for _, e := range c.entries {
		if e.BodyPart == "" || seen[e.BodyPart] {
			continue
		}
		seen[e.BodyPart] = true
		parts = append(parts, e.BodyPart)
	}
	sort.Strings(parts)
	return parts
}

func normalize(name string) string {
	return strings.ToLower(name)
}
