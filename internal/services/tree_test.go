package services

import (
	"testing"

	"github.com/contaflux/contaflux-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategory(name string, catType models.CategoryType, parentID *uuid.UUID, order int) models.Category {
	return models.Category{
		ID:           uuid.New(),
		Name:         name,
		Type:         catType,
		IsActive:     true,
		IncludeInDRE: true,
		ParentID:     parentID,
		SortOrder:    order,
	}
}

func TestBuildCategoryTree_ChildOrdering(t *testing.T) {
	root := newCategory("Custos Fixos", models.CategoryTypeExpense, nil, 0)
	root.IsGroup = true

	// Same sort order resolves by case-insensitive name.
	b := newCategory("aluguel", models.CategoryTypeExpense, &root.ID, 1)
	a := newCategory("Agua", models.CategoryTypeExpense, &root.ID, 1)
	first := newCategory("Folha", models.CategoryTypeExpense, &root.ID, 0)

	tree := BuildCategoryTree([]models.Category{root, b, a, first})

	children := tree.ChildrenOf(root.ID)
	require.Len(t, children, 3)
	assert.Equal(t, "Folha", children[0].Name)
	assert.Equal(t, "Agua", children[1].Name)
	assert.Equal(t, "aluguel", children[2].Name)
}

func TestBuildCategoryTree_OrphanedParentBecomesRoot(t *testing.T) {
	missing := uuid.New()
	orphan := newCategory("Marketing", models.CategoryTypeExpense, &missing, 0)
	real := newCategory("Receita Bruta", models.CategoryTypeIncome, nil, 0)

	tree := BuildCategoryTree([]models.Category{orphan, real})

	roots := tree.Roots()
	require.Len(t, roots, 2)

	// The orphan appears exactly once in root iteration.
	orphanCount := 0
	for _, r := range roots {
		if r.ID == orphan.ID {
			orphanCount++
		}
	}
	assert.Equal(t, 1, orphanCount)

	// And resolves as its own root.
	got, ok := tree.RootOf(orphan.ID)
	require.True(t, ok)
	assert.Equal(t, orphan.ID, got.ID)
}

func TestCategoryTree_RootOf(t *testing.T) {
	root := newCategory("Custos Variáveis", models.CategoryTypeExpense, nil, 0)
	mid := newCategory("Insumos", models.CategoryTypeExpense, &root.ID, 0)
	leaf := newCategory("Embalagens", models.CategoryTypeExpense, &mid.ID, 0)

	tree := BuildCategoryTree([]models.Category{root, mid, leaf})

	got, ok := tree.RootOf(leaf.ID)
	require.True(t, ok)
	assert.Equal(t, root.ID, got.ID)

	_, ok = tree.RootOf(uuid.New())
	assert.False(t, ok)
}

func TestCategoryTree_RootOfCycleTerminates(t *testing.T) {
	// A references B, B references A. The walk must terminate with a
	// defined value instead of hanging.
	idA := uuid.New()
	idB := uuid.New()
	a := models.Category{ID: idA, Name: "A", Type: models.CategoryTypeExpense, ParentID: &idB}
	b := models.Category{ID: idB, Name: "B", Type: models.CategoryTypeExpense, ParentID: &idA}

	tree := BuildCategoryTree([]models.Category{a, b})

	got, ok := tree.RootOf(idA)
	require.True(t, ok)
	assert.Contains(t, []uuid.UUID{idA, idB}, got.ID)
}

func TestCategoryTree_DescendantIDs(t *testing.T) {
	root := newCategory("Custos Fixos", models.CategoryTypeExpense, nil, 0)
	childA := newCategory("Pessoal", models.CategoryTypeExpense, &root.ID, 0)
	childB := newCategory("Ocupação", models.CategoryTypeExpense, &root.ID, 1)
	grandchild := newCategory("Salários", models.CategoryTypeExpense, &childA.ID, 0)
	unrelated := newCategory("Receita Bruta", models.CategoryTypeIncome, nil, 0)

	tree := BuildCategoryTree([]models.Category{root, childA, childB, grandchild, unrelated})

	ids := tree.DescendantIDs(root.ID)
	require.Len(t, ids, 4)
	// Pre-order: self first, then first child's subtree.
	assert.Equal(t, root.ID, ids[0])
	assert.Equal(t, childA.ID, ids[1])
	assert.Equal(t, grandchild.ID, ids[2])
	assert.Equal(t, childB.ID, ids[3])
	assert.NotContains(t, ids, unrelated.ID)

	assert.Nil(t, tree.DescendantIDs(uuid.New()))
}

func TestCategoryTree_AncestorIDs(t *testing.T) {
	root := newCategory("Deduções", models.CategoryTypeExpense, nil, 0)
	leaf := newCategory("Impostos sobre Vendas", models.CategoryTypeExpense, &root.ID, 0)

	tree := BuildCategoryTree([]models.Category{root, leaf})

	assert.Equal(t, []uuid.UUID{leaf.ID, root.ID}, tree.AncestorIDs(leaf.ID))
	assert.Equal(t, []uuid.UUID{root.ID}, tree.AncestorIDs(root.ID))
	assert.Nil(t, tree.AncestorIDs(uuid.New()))
}
