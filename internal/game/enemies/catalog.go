package enemies

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/magefree/deckbattle-server-go/internal/game/effects"
	"github.com/magefree/deckbattle-server-go/internal/game/rng"
)

// ErrEnemyNotFound is returned for unknown enemy ids.
var ErrEnemyNotFound = errors.New("enemy not found")

//go:embed enemies.yaml
var builtinEnemies []byte

type catalogFile struct {
	Enemies []Template `yaml:"enemies"`
}

// Catalog is the set of enemy templates.
type Catalog struct {
	templates []Template
	byID      map[int]Template
}

// NewCatalog parses a YAML enemy list and compiles every move script.
func NewCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode enemy catalog: %w", err)
	}

	c := &Catalog{byID: make(map[int]Template, len(file.Enemies))}
	for _, tmpl := range file.Enemies {
		if _, dup := c.byID[tmpl.ID]; dup {
			return nil, fmt.Errorf("enemy %d: duplicate id", tmpl.ID)
		}
		if tmpl.MaxHP <= 0 {
			return nil, fmt.Errorf("enemy %d (%s): hp must be positive", tmpl.ID, tmpl.Name)
		}
		if len(tmpl.Moves) == 0 {
			return nil, fmt.Errorf("enemy %d (%s): empty move table", tmpl.ID, tmpl.Name)
		}
		for i := range tmpl.Moves {
			move := &tmpl.Moves[i]
			prog, err := effects.Parse(move.Script)
			if err != nil {
				return nil, fmt.Errorf("enemy %d (%s) move %s: %w", tmpl.ID, tmpl.Name, move.Name, err)
			}
			move.Effect = prog
		}
		c.templates = append(c.templates, tmpl)
		c.byID[tmpl.ID] = tmpl
	}
	sort.Slice(c.templates, func(i, j int) bool { return c.templates[i].ID < c.templates[j].ID })
	return c, nil
}

// DefaultCatalog returns the builtin enemies.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtinEnemies)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every template ordered by id.
func (c *Catalog) All() []Template {
	all := make([]Template, len(c.templates))
	for i, t := range c.templates {
		all[i] = t.Clone()
	}
	return all
}

// GetByID returns a copy of the template with the given id.
func (c *Catalog) GetByID(id int) (Template, error) {
	tmpl, ok := c.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("enemy %d: %w", id, ErrEnemyNotFound)
	}
	return tmpl.Clone(), nil
}

// Random returns a copy of a uniformly chosen template.
func (c *Catalog) Random(src rng.Source) Template {
	return c.templates[src.IntN(len(c.templates))].Clone()
}
