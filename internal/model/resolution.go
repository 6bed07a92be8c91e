package model

import "time"

// IconResolution is one row of the resolution audit log: which tier
// produced (or failed to produce) an icon for a tool.
type IconResolution struct {
	ID         int64     `db:"id" json:"id"`
	ToolID     string    `db:"tool_id" json:"toolId"`
	Source     string    `db:"source" json:"source"`
	MIME       *string   `db:"mime" json:"mime,omitempty"`
	SizeBytes  *int64    `db:"size_bytes" json:"sizeBytes,omitempty"`
	Success    bool      `db:"success" json:"success"`
	DurationMs *int64    `db:"duration_ms" json:"durationMs,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ResolutionMiss marks audit rows where every tier came up empty.
const ResolutionMiss = "miss"
