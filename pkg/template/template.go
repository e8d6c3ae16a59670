// Package template renders {{placeholder}} expressions in action
// configuration strings against the transition's execution context.
package template

import (
	"regexp"
	"time"

	"github.com/haldesk/haldesk/pkg/expr"
	"github.com/haldesk/haldesk/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// Render substitutes {{ticket.*}}, {{user.*}}, {{context.*}} and {{now}}
// placeholders in input. An unresolved path leaves the original placeholder
// untouched, so a malformed template stays visible instead of silently
// collapsing to an empty string.
func Render(input string, executionCtx *models.ExecutionContext) string {
	return RenderWith(input, executionCtx.TemplateData())
}

// RenderWith substitutes placeholders against an explicit data map keyed by
// the root names (ticket, user, context).
func RenderWith(input string, data map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		path := placeholderPattern.FindStringSubmatch(match)[1]

		if path == "now" {
			return time.Now().UTC().Format(time.RFC3339)
		}

		value, ok := expr.Lookup(data, path)
		if !ok {
			return match
		}

		return expr.Stringify(value)
	})
}
