package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindGroupsTypoCluster(t *testing.T) {
	items := []Item{
		{Name: "Amazon", Category: "correspondent", ItemID: "a", SubjectID: 1},
		{Name: "Amzon", Category: "correspondent", ItemID: "b", SubjectID: 2},
		{Name: "Google", Category: "correspondent", ItemID: "c", SubjectID: 3},
	}

	groups := FindGroups(items, 0.7)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.ElementsMatch(t, []string{"Amazon", "Amzon"}, g.MemberNames)
	assert.Equal(t, "Amazon", g.RecommendedName)
	assert.ElementsMatch(t, []string{"a", "b"}, g.MemberItemIDs)
	assert.ElementsMatch(t, []int{1, 2}, g.SubjectDocumentIDs)
}

func TestFindGroupsNeverCrossesCategories(t *testing.T) {
	items := []Item{
		{Name: "Invoice", Category: "tag"},
		{Name: "Invoice", Category: "document_type"},
		{Name: "Invoices", Category: "document_type"},
	}

	groups := FindGroups(items, 0.7)
	require.Len(t, groups, 1)
	assert.Equal(t, "document_type", groups[0].Category)
	assert.ElementsMatch(t, []string{"Invoice", "Invoices"}, groups[0].MemberNames)
}

func TestFindGroupsSkipsSchemaCategories(t *testing.T) {
	items := []Item{
		{Name: "Amazon", Category: "schema_correspondent"},
		{Name: "Amzon", Category: "schema_correspondent"},
	}

	assert.Empty(t, FindGroups(items, 0.7))
}

func TestFindGroupsIdenticalNamesAreNotMerges(t *testing.T) {
	items := []Item{
		{Name: "Amazon", Category: "correspondent"},
		{Name: "amazon", Category: "correspondent"},
	}

	assert.Empty(t, FindGroups(items, 0.7))
}

func TestFindGroupsTransitiveMerge(t *testing.T) {
	// A~B and B~C clear the threshold; A~C does not need to.
	items := []Item{
		{Name: "Stadtwerke München", Category: "correspondent"},
		{Name: "Stadtwerke Münche", Category: "correspondent"},
		{Name: "Stadtwerke Münch", Category: "correspondent"},
	}

	groups := FindGroups(items, 0.9)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].MemberNames, 3)
	assert.Equal(t, "Stadtwerke München", groups[0].RecommendedName)
}

func TestFindGroupsLowThresholdIsNoisier(t *testing.T) {
	items := []Item{
		{Name: "Vodafone", Category: "correspondent"},
		{Name: "Telefonica", Category: "correspondent"},
	}

	assert.Empty(t, FindGroups(items, 0.8))
	assert.NotEmpty(t, FindGroups(items, 0.3))
}
