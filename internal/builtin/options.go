package builtin

// stringOption reads a string-typed option from a raw options map,
// returning def when absent or of the wrong type.
func stringOption(opts map[string]any, key, def string) string {
	if opts == nil {
		return def
	}
	v, ok := opts[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}
