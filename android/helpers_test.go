package android

// keysOf returns the translatable resource names of f in document order.
func keysOf(f *File) []string {
	var keys []string
	for _, e := range f.Entries {
		if e.IsTranslatable() {
			keys = append(keys, e.Name)
		}
	}
	return keys
}

// entryOf returns the last resource named name, or nil.
func entryOf(f *File, name string) *Entry {
	for i := len(f.Entries) - 1; i >= 0; i-- {
		if e := f.Entries[i]; e.Kind != KindComment && e.Name == name {
			return e
		}
	}
	return nil
}

// valueOf returns the text of a string resource.
func valueOf(f *File, name string) (string, bool) {
	e := entryOf(f, name)
	if e == nil || e.Kind != KindString {
		return "", false
	}
	return e.Value, true
}
