package output

// T renders user-facing messages for a locale.
type T interface {
	// T renders the message identified by key. data fills template
	// placeholders and may be nil.
	T(locale, key string, data map[string]any) string
	// Error renders the message for a domain error, or "" for nil.
	Error(locale string, err error) string
}
