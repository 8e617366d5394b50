package similarity

import "strings"

// Item is a single named entity considered for merge grouping.
type Item struct {
	Name      string
	ItemID    string
	Category  string
	SubjectID int
}

// Group is a cluster of near-duplicate names within one category.
type Group struct {
	Category           string
	MemberNames        []string
	MemberItemIDs      []string
	SubjectDocumentIDs []int
	RecommendedName    string
}

// schemaCategoryPrefix marks bootstrap categories that carry their own
// dedup and are never merge candidates.
const schemaCategoryPrefix = "schema_"

// FindGroups clusters near-duplicate names for merge suggestions. Only items
// of the same category are compared; pairs whose lowercase names are identical
// are true duplicates and skipped. Groups merge transitively: if A~B and B~C
// clear the threshold, all three land in one group.
func FindGroups(items []Item, threshold float64) []Group {
	byCategory := make(map[string][]int)
	var categoryOrder []string

	for i, item := range items {
		if strings.HasPrefix(item.Category, schemaCategoryPrefix) {
			continue
		}
		if _, seen := byCategory[item.Category]; !seen {
			categoryOrder = append(categoryOrder, item.Category)
		}
		byCategory[item.Category] = append(byCategory[item.Category], i)
	}

	var groups []Group
	for _, cat := range categoryOrder {
		groups = append(groups, groupCategory(items, byCategory[cat], threshold)...)
	}
	return groups
}

func groupCategory(items []Item, idx []int, threshold float64) []Group {
	parent := make(map[int]int, len(idx))
	for _, i := range idx {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			i, j := idx[a], idx[b]
			if strings.EqualFold(items[i].Name, items[j].Name) {
				continue
			}
			if Ratio(items[i].Name, items[j].Name) >= threshold {
				union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	var rootOrder []int
	for _, i := range idx {
		root := find(i)
		if _, seen := members[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		members[root] = append(members[root], i)
	}

	var groups []Group
	for _, root := range rootOrder {
		ids := members[root]
		if len(ids) < 2 {
			continue
		}
		groups = append(groups, buildGroup(items, ids))
	}
	return groups
}

func buildGroup(items []Item, ids []int) Group {
	g := Group{Category: items[ids[0]].Category}
	seenSubjects := make(map[int]bool)

	for _, i := range ids {
		item := items[i]
		g.MemberNames = append(g.MemberNames, item.Name)
		if item.ItemID != "" {
			g.MemberItemIDs = append(g.MemberItemIDs, item.ItemID)
		}
		if item.SubjectID != 0 && !seenSubjects[item.SubjectID] {
			seenSubjects[item.SubjectID] = true
			g.SubjectDocumentIDs = append(g.SubjectDocumentIDs, item.SubjectID)
		}
		// Longest name wins; first encountered wins ties.
		if len(item.Name) > len(g.RecommendedName) {
			g.RecommendedName = item.Name
		}
	}
	return g
}
