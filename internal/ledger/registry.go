package ledger

import (
	"slices"

	"fintrack/internal/core"
)

// Registry is the user's category list.
type Registry struct {
	items []core.Category
}

func NewRegistry(items []core.Category) *Registry {
	return &Registry{items: slices.Clone(items)}
}

func (r *Registry) Add(c core.Category) {
	r.items = append(r.items, c)
}

// Delete removes the category with id. Transactions that reference it are left alone.
func (r *Registry) Delete(id string) bool {
	i := slices.IndexFunc(r.items, func(c core.Category) bool { return c.ID == id })
	if i < 0 {
		return false
	}
	r.items = slices.Delete(r.items, i, i+1)
	return true
}

func (r *Registry) Find(id string) (core.Category, bool) {
	for _, c := range r.items {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// Name resolves id to a display name, core.UnknownCategory if it dangles.
func (r *Registry) Name(id string) string {
	if c, ok := r.Find(id); ok {
		return c.Name
	}
	return core.UnknownCategory
}

func (r *Registry) ByKind(kind core.Kind) []core.Category {
	var out []core.Category
	for _, c := range r.items {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) All() []core.Category {
	return slices.Clone(r.items)
}

func (r *Registry) Len() int {
	return len(r.items)
}

// Names returns an id to name lookup over the current registry.
func (r *Registry) Names() map[string]string {
	m := make(map[string]string, len(r.items))
	for _, c := range r.items {
		m[c.ID] = c.Name
	}
	return m
}
