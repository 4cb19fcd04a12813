package section

import "strings"

// Path returns the hierarchy path of a section, root first, e.g.
// "Root > Child > Grandchild".
//
// The walk stops at the first parent that is missing from sections or that
// was already visited, so cyclic chains yield the names seen before the
// repeat. An unknown or nameless target yields "".
func Path(sectionID int64, sections []Section) string {
	return pathIn(sectionID, Lookup(sections))
}

func pathIn(sectionID int64, byID map[int64]Section) string {
	target, ok := byID[sectionID]
	if !ok || target.Name == "" {
		return ""
	}

	names := []string{target.Name}
	visited := map[int64]bool{target.ID: true}
	cur := target
	for cur.HasParent() {
		pid := *cur.ParentID
		if visited[pid] {
			break
		}
		parent, ok := byID[pid]
		if !ok {
			break
		}
		visited[pid] = true
		names = append(names, parent.Name)
		cur = parent
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, Separator)
}

// AddHierarchy annotates every section with its hierarchy path. The input
// slice is left untouched.
func AddHierarchy(sections []Section) []WithHierarchy {
	byID := Lookup(sections)
	out := make([]WithHierarchy, 0, len(sections))
	for _, s := range sections {
		out = append(out, WithHierarchy{
			Section:          s,
			SectionHierarchy: pathIn(s.ID, byID),
		})
	}
	return out
}

// SplitPath is the inverse of joining names with Separator. Blank fragments
// are trimmed but kept so positions line up with ancestor depth.
func SplitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	parts := strings.Split(path, strings.TrimSpace(Separator))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// JoinPath joins names into a hierarchy path.
func JoinPath(names []string) string {
	return strings.Join(names, Separator)
}
