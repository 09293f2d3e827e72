package platform

import "time"

// ScanOptions controls what a format scanner reads.
type ScanOptions struct {
	// Global scans the user-wide configuration.
	Global bool

	// Project, when non-empty, also scans that project root's local
	// configuration.
	Project string

	// IncludeHistory reads the format's chat-session store. History
	// problems never fail the scan; they surface as warnings.
	IncludeHistory bool

	// Since filters history to sessions modified at or after this
	// time. Zero means no filter.
	Since time.Time
}
