// Package remote is a client for the REST store that holds published
// schemas ("forms") and their data records ("instances").
package remote

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
)

// Instance is a stored data record. ID and Form use SchemaID so integer and
// string identifiers both decode.
type Instance struct {
	ID        formkit.SchemaID `json:"id"`
	Form      formkit.SchemaID `json:"form"`
	FormName  string           `json:"form_name,omitempty"`
	Data      map[string]any   `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
}

// Record tags the raw data by the field types of s.
func (in Instance) Record(s formkit.Schema) (formkit.Record, error) {
	return formkit.DecodeRecord(s, in.Data)
}

// InstancePayload is the create/update body for an instance.
type InstancePayload struct {
	Form formkit.SchemaID `json:"form"`
	Data formkit.Record   `json:"data"`
}

// Preview is the read-only field listing served at /forms/{id}/preview/.
type Preview struct {
	Fields []formkit.RemoteField `json:"fields"`
}

// Error is a non-2xx response. It is returned as-is; the client never
// retries.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	msg := string(e.Body)
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(e.Body, &detail) == nil && detail.Detail != "" {
		msg = detail.Detail
	}
	if r := []rune(msg); len(r) > 200 {
		msg = string(r[:200]) + "..."
	}
	return fmt.Sprintf("remote: %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}
