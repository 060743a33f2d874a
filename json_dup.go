package formkit

import "github.com/reoring/formkit/internal/jsondup"

// maxDuplicateIssues caps duplicate_key reports per document.
const maxDuplicateIssues = 20

// DetectDuplicateKeys reports every repeated object key in a JSON document
// as a duplicate_key issue at the key's path. The error is nil when the
// document has none, Issues when it has some, and the syntax error when the
// text is not JSON.
func DetectDuplicateKeys(data []byte) error {
	found, err := jsondup.Detect(data, maxDuplicateIssues)
	if err != nil {
		return err
	}
	var iss Issues
	for _, f := range found {
		it := IssueAt(Root(), CodeDuplicateKey, map[string]any{"key": f.Key})
		it.Path = f.Path
		iss = AppendIssues(iss, it)
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}
