package operations

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shortcut-cli/sc/resolver"
	"github.com/shortcut-cli/sc/template"
)

// progress prints one line per finished request. A nil writer disables printing.
type progress struct {
	w     io.Writer
	total int
}

func (p progress) printf(format string, args ...any) {
	if p.w == nil {
		return
	}
	fmt.Fprintf(p.w, format, args...)
}

// success prints "[i/total] Created story 123 - Login page". The id and name come from the API
// response when present, otherwise the id falls back to the operation's id.
func (p progress) success(index int, action template.Action, entity template.Entity, id, result any) {
	line := fmt.Sprintf("[%d/%d] %s %s", index+1, p.total, action.PastTense(), entity)
	obj, _ := result.(map[string]any)
	if rid, ok := obj["id"]; ok && rid != nil {
		id = rid
	}
	if s := resolver.Stringify(id); s != "" {
		line += " " + s
	}
	if name := displayName(obj); name != "" {
		line += " - " + name
	}
	p.printf("%s\n", line)
}

// failure prints "[i/total] FAILED: create story — <error>".
func (p progress) failure(index int, action template.Action, entity template.Entity, err error) {
	p.printf("[%d/%d] FAILED: %s %s — %v\n", index+1, p.total, action, entity, err)
}

// dryRun prints the request that would have been sent.
func (p progress) dryRun(req Request, body map[string]any) {
	p.printf("%s\n", req)
	if body == nil {
		return
	}
	b, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		p.printf("<unprintable body: %v>\n", err)
		return
	}
	p.printf("%s\n", b)
}

func (p progress) summary(s Summary) {
	p.printf("Summary: total=%d succeeded=%d failed=%d\n", s.Total, s.Succeeded, s.Failed)
}

// displayName picks the human-facing label of an API object.
func displayName(obj map[string]any) string {
	for _, key := range []string{"name", "description", "text"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}

	return ""
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, result *ExecutionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode execution result: %w", err)
	}

	return nil
}
