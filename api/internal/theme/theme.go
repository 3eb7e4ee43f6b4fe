// Package theme resolves theme identifiers against the chroma style registry,
// falling back to style files on disk.
package theme

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"inkify/api/internal/apperr"
)

// Handle is an immutable reference to a resolved theme.
type Handle struct {
	style *chroma.Style
}

func (h Handle) Name() string {
	if h.style == nil {
		return ""
	}
	return h.style.Name
}

func (h Handle) Style() *chroma.Style { return h.style }

func (h Handle) IsZero() bool { return h.style == nil }

// DB is the read-only theme database.
type DB interface {
	FindByName(name string) (Handle, bool)
	LoadFromPath(path string) (Handle, error)
	Names() []string
}

// Chroma looks themes up in a snapshot of chroma's style registry taken at
// construction time.
type Chroma struct {
	byName  map[string]*chroma.Style
	byLower map[string]*chroma.Style
	names   []string
}

func NewChroma() *Chroma {
	c := &Chroma{
		byName:  make(map[string]*chroma.Style, len(styles.Registry)),
		byLower: make(map[string]*chroma.Style, len(styles.Registry)),
	}
	for name, s := range styles.Registry {
		c.byName[name] = s
		c.byLower[strings.ToLower(name)] = s
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// FindByName matches exactly first, then case-insensitively, so the default
// "Dracula" finds chroma's "dracula".
func (c *Chroma) FindByName(name string) (Handle, bool) {
	if s, ok := c.byName[name]; ok {
		return Handle{style: s}, true
	}
	if s, ok := c.byLower[strings.ToLower(name)]; ok {
		return Handle{style: s}, true
	}
	return Handle{}, false
}

// LoadFromPath parses a chroma XML style definition.
func (c *Chroma) LoadFromPath(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Handle{}, err
	}
	defer f.Close()

	s, err := chroma.NewXMLStyle(f)
	if err != nil {
		return Handle{}, fmt.Errorf("parse style %s: %w", path, err)
	}
	return Handle{style: s}, nil
}

func (c *Chroma) Names() []string {
	return append([]string(nil), c.names...)
}

// Resolve prefers a database name over a path even when a file of that
// name exists.
func Resolve(db DB, id string) (Handle, error) {
	if h, ok := db.FindByName(id); ok {
		return h, nil
	}
	h, err := db.LoadFromPath(id)
	if err != nil {
		return Handle{}, apperr.Wrap(apperr.InvalidTheme, err, "invalid theme `"+id+"`")
	}
	return h, nil
}
