package utils

// Contains reports whether id is a member of ids.
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns ids with every occurrence of id removed.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Unique returns ids without duplicates, keeping the first occurrence.
func Unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SameSet reports whether a and b hold the same ids, ignoring order.
func SameSet(a []string, b []string) bool {
	a, b = Unique(a), Unique(b)
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !Contains(b, v) {
			return false
		}
	}
	return true
}
