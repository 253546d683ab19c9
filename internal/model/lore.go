package model

// Section is the atomic indexed unit of lore: one heading-delimited
// block of the canonical document or of a proposal's markdown file.
type Section struct {
	SectionID string            `json:"sectionId"`
	Title     string            `json:"title"`
	Level     int               `json:"level"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Chunks    []string          `json:"chunks,omitempty"`
	Source    string            `json:"source,omitempty"`

	// TokenCounts backs similarity scoring and is never exposed to
	// the presentation layer.
	TokenCounts map[string]int `json:"-"`
}

// Proposal is a pending change-request carrying candidate sections.
type Proposal struct {
	Title    string    `json:"title"`
	State    string    `json:"state"`
	PRNumber int       `json:"prNumber"`
	Date     string    `json:"date"`
	Sections []Section `json:"sections"`
}

// ProposalSummary is one row of an open-proposal listing.
type ProposalSummary struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	CreatedAt string `json:"createdAt"`
}

// ProposalPage is a validated, paginated slice of open proposals.
// TotalApprox is derived from the upstream last-page hint when the
// upstream response carries one.
type ProposalPage struct {
	Items       []ProposalSummary `json:"items"`
	Limit       int               `json:"limit"`
	Offset      int               `json:"offset"`
	TotalApprox *int              `json:"totalApprox,omitempty"`
}

// ProposalFile describes one file changed by a proposal.
type ProposalFile struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	ContentsURL string `json:"contents_url"`
}

// RelatedSection is one entry of a related-sections query result.
type RelatedSection struct {
	SectionID  string   `json:"sectionId"`
	Title      string   `json:"title"`
	Source     string   `json:"source"`
	SharedTags []string `json:"sharedTags"`
	Similarity float64  `json:"similarity"`
}
