package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/nobelium/internal/core/model"
)

func TestCollectPersons(t *testing.T) {
	tree := []model.TreeEntry{
		{
			Parents:  []model.TreePerson{{Name: "Arnold Sommerfeld", Type: "scholar"}},
			Children: []model.TreePerson{{Name: "Werner Heisenberg", Type: "laureate", Category: "physics", Year: "1932"}},
		},
		{
			// Sommerfeld appears again in a second block; identical fields
			// collapse to one person.
			Parents:  []model.TreePerson{{Name: "Arnold Sommerfeld", Type: "scholar"}},
			Children: []model.TreePerson{{Name: "Peter Debye", Type: "laureate", Category: "chemistry", Year: "1936"}},
		},
	}

	persons := CollectPersons(tree)
	require.Len(t, persons, 3)
	assert.Equal(t, "Arnold Sommerfeld", persons[0].Name)
	assert.Equal(t, "Peter Debye", persons[1].Name)
	assert.Equal(t, "Werner Heisenberg", persons[2].Name)
}

func TestSampleRecords_ScenarioBardeen(t *testing.T) {
	// Two physics prizes, one sample: the primary key excludes the year and
	// the earliest year survives.
	tree := []model.TreeEntry{
		{Children: []model.TreePerson{
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1972"},
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1956"},
		}},
	}

	samples := SampleRecords(tree)
	require.Len(t, samples, 1)
	assert.Equal(t, "john bardeen physics", samples[0].PrimaryKey())
	assert.Equal(t, "1956", samples[0].Year)
}

func TestSampleRecords_DistinctCategoriesStaySeparate(t *testing.T) {
	tree := []model.TreeEntry{
		{Children: []model.TreePerson{
			{Name: "Marie Curie", Type: "laureate", Category: "physics", Year: "1903"},
			{Name: "Marie Curie", Type: "laureate", Category: "chemistry", Year: "1911"},
		}},
	}

	samples := SampleRecords(tree)
	require.Len(t, samples, 2)
	assert.Equal(t, "marie curie chemistry", samples[0].PrimaryKey())
	assert.Equal(t, "marie curie physics", samples[1].PrimaryKey())
}

func TestSampleRecords_ExcludesScholars(t *testing.T) {
	tree := []model.TreeEntry{
		{
			Parents:  []model.TreePerson{{Name: "Arnold Sommerfeld", Type: "scholar"}},
			Children: []model.TreePerson{{Name: "Werner Heisenberg", Type: "laureate", Category: "physics", Year: "1932"}},
		},
	}

	samples := SampleRecords(tree)
	require.Len(t, samples, 1)
	assert.Equal(t, "Werner Heisenberg", samples[0].Name)
}

func TestSampleRecords_NoPrizeKey(t *testing.T) {
	tree := []model.TreeEntry{
		{Parents: []model.TreePerson{{Name: "J. J. Thomson", Type: "laureate"}}},
	}

	samples := SampleRecords(tree)
	require.Len(t, samples, 1)
	assert.Equal(t, "j. j. thomson no prize", samples[0].PrimaryKey())
}

func TestSampleRecords_OrderIndependent(t *testing.T) {
	forward := []model.TreeEntry{
		{Children: []model.TreePerson{
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1956"},
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1972"},
		}},
	}
	reversed := []model.TreeEntry{
		{Children: []model.TreePerson{
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1972"},
			{Name: "John Bardeen", Type: "laureate", Category: "physics", Year: "1956"},
		}},
	}

	assert.Equal(t, SampleRecords(forward), SampleRecords(reversed))
}
