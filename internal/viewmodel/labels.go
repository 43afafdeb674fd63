package viewmodel

var defaultLabels = map[RecordType]string{
	TypeChannel:   "Controllers",
	TypeDisplay:   "Displays",
	TypeContainer: "Unassigned displays",
}

// Label returns the menu label for t. overrides take precedence; unknown
// types fall back to the raw type name.
func Label(t RecordType, overrides map[string]string) string {
	if l, ok := overrides[string(t)]; ok && l != "" {
		return l
	}
	if l, ok := defaultLabels[t]; ok {
		return l
	}
	return string(t)
}
