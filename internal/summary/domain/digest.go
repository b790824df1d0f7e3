// Package domain turns a list of tasks into the prompt sent to the
// summarization model.
package domain

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

// PromptPrefix is the fixed instruction placed before the digest.
const PromptPrefix = "Here is today's task list. Please summarize today's work plan and give suggestions:\n"

// RenderLine describes one task on a single line.
func RenderLine(t *task.Task) string {
	return fmt.Sprintf("Task: %s, Category: %s, Urgency: %s, Estimated hours: %s, Deadline: %s, Note: %s",
		flatten(t.Title()),
		t.Category().Label(),
		t.Urgency().Label(),
		t.EstimatedHours().String(),
		t.Deadline().String(),
		flatten(t.Note()),
	)
}

// RenderDigest renders tasks one per line in the given order. No tasks
// render as the empty string.
func RenderDigest(tasks []*task.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, RenderLine(t))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt prefixes the digest with the summarization instruction.
func BuildPrompt(digest string) string {
	return PromptPrefix + digest
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// flatten keeps multi-line notes from splitting a task over several digest
// lines. Other whitespace is left as typed.
func flatten(s string) string {
	return lineBreaks.Replace(s)
}
