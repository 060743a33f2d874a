package formkit

// IssueAt creates an Issue at the given path with provided code and params.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code string, params map[string]any) Issue {
	kv := make([]any, 0, len(params)*2)
	for k, v := range params {
		kv = append(kv, k, v)
	}
	return p.Issue(code, kv...)
}
