package workspace

import (
	"fmt"
	"sort"
	"strings"
)

// Tier is a group of modules with no dependencies on each other. Modules in
// a tier depend only on modules in earlier tiers.
type Tier []*Module

// CycleError reports a dependency cycle between workspace modules
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between modules: %s", strings.Join(e.Members, ", "))
}

// Tiers orders the workspace modules into dependency tiers using Kahn's
// algorithm. Tier 0 has no internal dependencies, tier 1 depends only on
// tier 0, and so on. Returns a CycleError if the internal dependency graph
// is not acyclic.
func (w *Workspace) Tiers() ([]Tier, error) {
	indegree := make(map[string]int, len(w.Modules))
	dependents := make(map[string][]string, len(w.Modules))

	for path, mod := range w.Modules {
		if _, ok := indegree[path]; !ok {
			indegree[path] = 0
		}
		for _, dep := range mod.InternalDeps {
			indegree[path]++
			dependents[dep] = append(dependents[dep], path)
		}
	}

	ready := make([]string, 0, len(w.Modules))
	for path, deg := range indegree {
		if deg == 0 {
			ready = append(ready, path)
		}
	}

	var tiers []Tier
	placed := 0

	for len(ready) > 0 {
		sort.Strings(ready)

		tier := make(Tier, 0, len(ready))
		var next []string
		for _, path := range ready {
			tier = append(tier, w.Modules[path])
			placed++
			for _, dep := range dependents[path] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		tiers = append(tiers, tier)
		ready = next
	}

	if placed != len(w.Modules) {
		var members []string
		for path, deg := range indegree {
			if deg > 0 {
				members = append(members, path)
			}
		}
		sort.Strings(members)
		return nil, &CycleError{Members: members}
	}

	return tiers, nil
}

// PublishOrder flattens the tiers into a single ordered module list
func (w *Workspace) PublishOrder() ([]*Module, error) {
	tiers, err := w.Tiers()
	if err != nil {
		return nil, err
	}
	var order []*Module
	for _, tier := range tiers {
		order = append(order, tier...)
	}
	return order, nil
}
