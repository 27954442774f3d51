package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adcraftlabs/adcraft/internal/content"
)

func TestProductSet_AddKeepsOrderAndDedupes(t *testing.T) {
	set := NewProductSet()

	assert.True(t, set.Add(content.Product{SKU: "SKU-001", ProductName: "Sage Whisper"}))
	assert.True(t, set.Add(content.Product{SKU: "SKU-002", ProductName: "Forest Depth"}))
	assert.False(t, set.Add(content.Product{SKU: "SKU-001", ProductName: "Sage Whisper (dup)"}),
		"same sku must not insert twice")

	products := set.Products()
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "SKU-001", products[0].SKU)
	assert.Equal(t, "SKU-002", products[1].SKU)
	assert.Equal(t, "Sage Whisper", products[0].ProductName, "first insert wins")
}

func TestProductSet_KeyFallsBackToName(t *testing.T) {
	set := NewProductSet()

	assert.True(t, set.Add(content.Product{ProductName: "Unnamed Special"}))
	assert.False(t, set.Add(content.Product{ProductName: "Unnamed Special"}))
	assert.False(t, set.Add(content.Product{}), "no sku and no name has no identity")
	assert.Equal(t, 1, set.Len())
}

func TestProductSet_RemoveReindexes(t *testing.T) {
	set := NewProductSet()
	set.Add(content.Product{SKU: "SKU-001"})
	set.Add(content.Product{SKU: "SKU-002"})
	set.Add(content.Product{SKU: "SKU-003"})

	assert.True(t, set.Remove("SKU-002"))
	assert.False(t, set.Remove("SKU-002"), "second removal is a no-op")
	assert.False(t, set.Remove("SKU-999"))

	products := set.Products()
	assert.Equal(t, []string{"SKU-001", "SKU-003"}, []string{products[0].SKU, products[1].SKU})

	// Removal after reindex still targets the right element.
	assert.True(t, set.Remove("SKU-003"))
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, "SKU-001", set.Products()[0].SKU)
}

func TestProductSet_ReplaceDedupesFirstSeen(t *testing.T) {
	set := NewProductSet()
	set.Add(content.Product{SKU: "SKU-009"})

	set.Replace([]content.Product{
		{SKU: "SKU-001", ProductName: "First"},
		{SKU: "SKU-002"},
		{SKU: "SKU-001", ProductName: "Shadowed"},
	})

	products := set.Products()
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "SKU-001", products[0].SKU)
	assert.Equal(t, "First", products[0].ProductName)
	assert.Equal(t, "SKU-002", products[1].SKU)
}

func TestProductSet_ProductsReturnsCopy(t *testing.T) {
	set := NewProductSet()
	set.Add(content.Product{SKU: "SKU-001", ProductName: "Sage Whisper"})

	products := set.Products()
	products[0].ProductName = "mutated"

	assert.Equal(t, "Sage Whisper", set.Products()[0].ProductName)
}
