package vocabulary

// DefaultPrefixes returns the prefix bindings every built query carries.
// Resource-supplied prefix maps may override either entry by reusing the key.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  RDF,
		"rdfs": RDFS,
	}
}

// MergePrefixes merges caller-supplied prefix bindings over the defaults.
// The input map is not mutated; the result is a fresh map.
func MergePrefixes(overrides map[string]string) map[string]string {
	merged := DefaultPrefixes()
	for prefix, namespace := range overrides {
		merged[prefix] = namespace
	}
	return merged
}
