package objc

// Artifact represents a generated output file.
type Artifact struct {
	Name    string `json:"name"` // e.g. "classes.json"
	Content []byte `json:"-"`    // Raw content
	Type    string `json:"type"` // MIME type hint
}

// Snapshot holds the complete result of an extraction run.
type Snapshot struct {
	Meta      SnapshotMeta `json:"meta"`
	Classes   []*Class     `json:"classes"`
	Enums     []*Enum      `json:"enums"`
	Insights  []Insight    `json:"insights"`
	Artifacts []Artifact   `json:"artifacts"`
}

// SnapshotMeta contains metadata about a snapshot generation run.
type SnapshotMeta struct {
	ID           string        `json:"snapshot_id"`
	RepoPath     string        `json:"repo_path"`
	GeneratedAt  string        `json:"generated_at"`
	Duration     string        `json:"duration"`
	Renderers    []string      `json:"renderers"`
	Explainers   []string      `json:"explainers"`
	FileHashes   []FileHash    `json:"file_hashes,omitempty"`
	Skipped      []SkippedFile `json:"skipped"`
	HeaderCount  int           `json:"header_count"`
	ClassCount   int           `json:"class_count"`
	EnumCount    int           `json:"enum_count"`
	InsightCount int           `json:"insight_count"`
}

// FileHash tracks a header's content hash.
type FileHash struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	ModTime string `json:"mod_time"`
}

// SkippedFile is a header that was listed but could not be read.
type SkippedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Insight is a finding about the extracted declarations as a whole, such as
// a superclass cycle.
type Insight struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"` // 0.0 - 1.0
	Evidence    []Evidence `json:"evidence"`
	Actions     []string   `json:"suggested_actions,omitempty"`
}

// Evidence links an insight back to a declaration.
type Evidence struct {
	File   string `json:"file,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Detail string `json:"detail,omitempty"`
}
