package operations

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shortcut-cli/sc/template"
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("aborted by user")

// planLine is one group of the confirmation summary.
type planLine struct {
	action template.Action
	entity template.Entity
	count  int
}

// plan groups the requests of t by action and entity in order of first appearance.
func plan(t *template.Template) []planLine {
	var lines []planLine
	index := map[[2]string]int{}
	for _, op := range t.Operations {
		key := [2]string{string(op.Action), string(op.Entity)}
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, planLine{action: op.Action, entity: op.Entity})
		}
		lines[i].count += op.Count()
	}

	return lines
}

// writePlan prints the confirmation summary.
func writePlan(w io.Writer, t *template.Template, total int) {
	if t.Meta != nil && t.Meta.Description != "" {
		fmt.Fprintf(w, "Template: %s\n", t.Meta.Description)
	}
	if t.Meta != nil && t.Meta.Author != "" {
		fmt.Fprintf(w, "Author: %s\n", t.Meta.Author)
	}
	fmt.Fprintf(w, "This will execute %d operation(s):\n", total)
	for _, l := range plan(t) {
		fmt.Fprintf(w, "  %s %s x%d\n", l.action.Title(), l.entity, l.count)
	}
}

// confirm prints the plan and asks for a yes/no answer. Anything but "y" or "yes" declines.
func confirm(ctx context.Context, w io.Writer, r io.Reader, t *template.Template, total int) error {
	writePlan(w, t, total)
	fmt.Fprint(w, "Proceed? [y/N]: ")

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(r).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return nil
		default:
			return ErrAborted
		}
	}
}
