package section

// ChildSections returns sectionID followed by every descendant id found in
// subSections, pre-order depth first: each child is immediately followed by
// its own descendants before the next sibling.
func ChildSections(sectionID int64, subSections []*DisplaySection) []int64 {
	ids := []int64{sectionID}
	walk(subSections, func(n *DisplaySection) bool {
		ids = append(ids, n.SectionID)
		return true
	})
	return ids
}

// ChildSetOf looks sectionID up in the forest and returns its child set. An
// id missing from the forest has a child set of just itself.
func ChildSetOf(sectionID int64, forest []*DisplaySection) []int64 {
	if n := Find(forest, sectionID); n != nil {
		return ChildSections(sectionID, n.SubSections)
	}
	return []int64{sectionID}
}

// Select applies a click on sectionID to the current selection.
//
//   - sectionID already selected: it and its whole child set are removed,
//     including descendants that were selected on their own.
//   - plain click: the selection becomes the child set.
//   - modified click: the child set is appended to the selection. Callers
//     dedupe downstream if they need to.
//
// current is never modified.
func Select(current []int64, sectionID int64, subSections []*DisplaySection, modifier bool) []int64 {
	childSet := ChildSections(sectionID, subSections)

	if contains(current, sectionID) {
		drop := make(map[int64]bool, len(childSet))
		for _, id := range childSet {
			drop[id] = true
		}
		out := make([]int64, 0, len(current))
		for _, id := range current {
			if !drop[id] {
				out = append(out, id)
			}
		}
		return out
	}

	if !modifier {
		return childSet
	}

	out := make([]int64, 0, len(current)+len(childSet))
	out = append(out, current...)
	return append(out, childSet...)
}

// InitialOpenSections returns the ids that must be expanded so every selected
// section is visible: each selected id followed by its ancestors.
//
// Ancestors are resolved against the flat list. A walk stops at a root, at a
// parent missing from sections, or at a parent already in the result, which
// bounds cyclic chains. Duplicates across different selected ids are kept.
func InitialOpenSections(selected []int64, sections []Section) []int64 {
	open := make([]int64, 0, len(selected))
	if len(selected) == 0 {
		return open
	}
	byID := Lookup(sections)

	for _, id := range selected {
		open = append(open, id)
		cur, ok := byID[id]
		for ok && cur.HasParent() {
			pid := *cur.ParentID
			parent, found := byID[pid]
			if !found || contains(open, pid) {
				break
			}
			open = append(open, pid)
			cur = parent
		}
	}
	return open
}

// Dedupe removes repeated ids keeping first occurrence order.
func Dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
