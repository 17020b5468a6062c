package services

import (
	"sort"
	"strings"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
)

// maxTreeDepth bounds every ancestor walk. Parent links are user-editable,
// so a cycle in the chain must terminate the walk instead of hanging the
// request.
const maxTreeDepth = 64

// CategoryTree indexes a flat category list into a navigable hierarchy.
// A category whose parent id does not resolve to any known category is
// treated as a root rather than an error.
type CategoryTree struct {
	byID     map[uuid.UUID]models.Category
	children map[uuid.UUID][]models.Category
	roots    []models.Category
}

// BuildCategoryTree indexes the given categories. Children of the same
// parent are sorted by sort order, ties broken by case-insensitive name.
func BuildCategoryTree(categories []models.Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[uuid.UUID]models.Category, len(categories)),
		children: make(map[uuid.UUID][]models.Category),
	}

	for _, c := range categories {
		t.byID[c.ID] = c
	}

	for _, c := range categories {
		if pid := t.resolvedParent(c); pid != nil {
			t.children[*pid] = append(t.children[*pid], c)
		} else {
			t.roots = append(t.roots, c)
		}
	}

	sortCategories(t.roots)
	for _, siblings := range t.children {
		sortCategories(siblings)
	}

	return t
}

// resolvedParent returns the parent id only if it points at a known
// category. An orphaned parent reference makes the category its own root.
func (t *CategoryTree) resolvedParent(c models.Category) *uuid.UUID {
	if c.ParentID == nil {
		return nil
	}
	if _, ok := t.byID[*c.ParentID]; !ok {
		return nil
	}
	return c.ParentID
}

// Get returns the category with the given id.
func (t *CategoryTree) Get(id uuid.UUID) (models.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Len returns the number of indexed categories.
func (t *CategoryTree) Len() int {
	return len(t.byID)
}

// Roots returns the root categories in display order. Orphans appear
// here exactly once.
func (t *CategoryTree) Roots() []models.Category {
	return t.roots
}

// ChildrenOf returns the direct children of the given category in
// display order.
func (t *CategoryTree) ChildrenOf(parentID uuid.UUID) []models.Category {
	return t.children[parentID]
}

// RootOf walks parent pointers upward from the given category until it
// reaches a root. On a cycle or an unknown parent it returns the last
// valid node reached instead of looping.
func (t *CategoryTree) RootOf(id uuid.UUID) (models.Category, bool) {
	current, ok := t.byID[id]
	if !ok {
		return models.Category{}, false
	}

	seen := map[uuid.UUID]bool{current.ID: true}
	for i := 0; i < maxTreeDepth; i++ {
		pid := t.resolvedParent(current)
		if pid == nil {
			return current, true
		}
		parent := t.byID[*pid]
		if seen[parent.ID] {
			// Cycle: stop at the last node reached before repeating.
			return current, true
		}
		seen[parent.ID] = true
		current = parent
	}
	return current, true
}

// DescendantIDs collects the given category's id and the ids of all of
// its descendants, pre-order. The traversal is stack-based so memory
// stays proportional to tree width rather than call depth.
func (t *CategoryTree) DescendantIDs(rootID uuid.UUID) []uuid.UUID {
	if _, ok := t.byID[rootID]; !ok {
		return nil
	}

	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	stack := []uuid.UUID{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)

		kids := t.children[id]
		// Push in reverse so the pop order matches display order.
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i].ID)
		}
	}
	return ids
}

// AncestorIDs returns the category's own id followed by each ancestor up
// to and including its root. Cycle-safe; an orphaned parent ends the walk.
func (t *CategoryTree) AncestorIDs(id uuid.UUID) []uuid.UUID {
	current, ok := t.byID[id]
	if !ok {
		return nil
	}

	ids := []uuid.UUID{current.ID}
	seen := map[uuid.UUID]bool{current.ID: true}
	for i := 0; i < maxTreeDepth; i++ {
		pid := t.resolvedParent(current)
		if pid == nil {
			break
		}
		parent := t.byID[*pid]
		if seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		ids = append(ids, parent.ID)
		current = parent
	}
	return ids
}

func sortCategories(categories []models.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
}
