package types

// Verdict is the per-item decision computed during one curation pass.
// It is never persisted.
type Verdict struct {
	KeepImages        []string
	TextContent       string
	DeleteWholeFolder bool
}

// ItemOutcome summarizes what curation did to one item folder.
type ItemOutcome struct {
	Name          string   `json:"name"`
	KeptImages    []string `json:"kept_images"`
	RemovedImages []string `json:"removed_images"`
	TextLength    int      `json:"text_length"`
	Deleted       bool     `json:"deleted"`
	// DeleteFailed marks a folder that failed the gates but could not be
	// removed. It is counted in CurationReport.Failed, never in Kept.
	DeleteFailed bool   `json:"delete_failed,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// CurationReport is the result of one curation pass.
type CurationReport struct {
	SourceDir     string        `json:"source_dir"`
	TargetDir     string        `json:"target_dir"`
	Items         []ItemOutcome `json:"items"`
	Kept          int           `json:"kept"`
	Deleted       int           `json:"deleted"`
	Failed        int           `json:"failed"`
	ImagesRemoved int           `json:"images_removed"`
}
