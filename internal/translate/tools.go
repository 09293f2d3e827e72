package translate

import (
	"sort"
	"strings"
)

// toolPermissions maps Claude Code tool names to OpenCode permission
// keys. The table is fixed; extending it is preferred over guessing
// additional heuristics.
var toolPermissions = map[string]string{
	"bash":         "bash",
	"read":         "read",
	"write":        "write",
	"edit":         "edit",
	"multiedit":    "edit",
	"notebookedit": "edit",
	"grep":         "grep",
	"glob":         "glob",
	"webfetch":     "webfetch",
	"websearch":    "websearch",
	"task":         "task",
	"todowrite":    "todowrite",
}

// permissionTools is the reverse direction: permission key to Claude
// Code tool name.
var permissionTools = map[string]string{
	"bash":      "Bash",
	"read":      "Read",
	"write":     "Write",
	"edit":      "Edit",
	"grep":      "Grep",
	"glob":      "Glob",
	"webfetch":  "WebFetch",
	"websearch": "WebSearch",
	"task":      "Task",
	"todowrite": "TodoWrite",
}

// ToolPermissions translates a canonical tool list into OpenCode's
// permission map. Unknown tool names are returned separately; OpenCode
// accepts arbitrary capability strings, so callers pass them through as
// lower-cased opaque keys after recording a warning.
func ToolPermissions(tools []string) (perms map[string]bool, unknown []string) {
	if len(tools) == 0 {
		return nil, nil
	}
	perms = make(map[string]bool, len(tools))
	for _, tool := range tools {
		key, ok := toolPermissions[strings.ToLower(tool)]
		if !ok {
			unknown = append(unknown, tool)
			key = strings.ToLower(tool)
		}
		perms[key] = true
	}
	sort.Strings(unknown)
	return perms, unknown
}

// PermissionTools translates an OpenCode permission map back into a
// Claude Code tool list. Disabled permissions are dropped; unknown
// permission keys are preserved verbatim. The result is sorted.
func PermissionTools(perms map[string]bool) []string {
	if len(perms) == 0 {
		return nil
	}
	tools := make([]string, 0, len(perms))
	for key, enabled := range perms {
		if !enabled {
			continue
		}
		if tool, ok := permissionTools[key]; ok {
			tools = append(tools, tool)
		} else {
			tools = append(tools, key)
		}
	}
	sort.Strings(tools)
	return tools
}
