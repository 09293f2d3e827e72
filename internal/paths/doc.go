// Package paths centralizes filesystem path resolution for the three
// supported configuration formats: Claude Code, OpenCode, and Cursor.
//
// All functions return empty strings for unknown formats or when the
// home directory cannot be resolved, so callers can treat an empty
// path as "this surface does not exist for this format".
package paths
