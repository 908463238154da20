package databind

import (
	"sort"

	"github.com/go-drift/databind/pkg/document"
	"github.com/go-drift/databind/pkg/errors"
)

// maxUpdateIterations bounds the reentrant-dirtying retry loop of one
// update pass. Views added or roots dirtied while a pass runs are
// handled within the same pass up to this many rounds.
const maxUpdateIterations = 10

// Views is the update engine: it owns every view of a model, indexes
// them by the root names they depend on, and runs the dirty-driven
// update pass.
type Views struct {
	views  []View
	toAdd  []View
	byName map[string][]View
}

// Add queues a view. Registration in the dependency index and the
// initial update happen on the next pass.
func (vs *Views) Add(v View) {
	if v == nil || !v.Valid() {
		return
	}
	vs.toAdd = append(vs.toAdd, v)
}

// OnElementRemove purges every view attached to the removed element.
func (vs *Views) OnElementRemove(element document.Ref) {
	vs.views = removeViewsOf(vs.views, element)
	vs.toAdd = removeViewsOf(vs.toAdd, element)
	for name, list := range vs.byName {
		vs.byName[name] = removeViewsOf(list, element)
	}
}

func removeViewsOf(list []View, element document.Ref) []View {
	kept := list[:0]
	for _, v := range list {
		if v.ElementRef() != element {
			kept = append(kept, v)
		}
	}
	return kept
}

// Update runs one pass: the union of freshly added views and views
// depending on a dirty root name is deduplicated, sorted by element
// depth ascending, and updated outer-first. Updates that dirty further
// roots or add further views trigger another round within the same
// pass, up to the iteration bound. Returns true if any view pushed a
// change.
func (vs *Views) Update(m *Model, dirty map[string]struct{}) bool {
	changed := false

	for i := 0; i == 0 || ((len(vs.toAdd) > 0 || len(dirty) > 0) && i < maxUpdateIterations); i++ {
		var pending []View

		if len(vs.toAdd) > 0 {
			if vs.byName == nil {
				vs.byName = map[string][]View{}
			}
			for _, v := range vs.toAdd {
				vs.views = append(vs.views, v)
				for _, name := range v.VariableNames() {
					vs.byName[name] = append(vs.byName[name], v)
				}
				pending = append(pending, v)
			}
			vs.toAdd = nil
		}

		for name := range dirty {
			pending = append(pending, vs.byName[name]...)
		}

		seen := map[View]struct{}{}
		unique := pending[:0]
		for _, v := range pending {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			unique = append(unique, v)
		}

		sort.SliceStable(unique, func(a, b int) bool {
			return unique[a].ElementDepth() < unique[b].ElementDepth()
		})

		for _, v := range unique {
			if !v.Valid() {
				continue
			}
			if v.Update(m) {
				changed = true
			}
		}

		dirty = m.takeDirty()
	}

	if len(dirty) > 0 || len(vs.toAdd) > 0 {
		errors.Reportf(errors.KindRun, "databind.Update", "update pass did not settle after %d iterations", maxUpdateIterations)
		// Leftover names are re-queued for the next pass.
		for name := range dirty {
			m.DirtyVariable(name)
		}
	}

	return changed
}
