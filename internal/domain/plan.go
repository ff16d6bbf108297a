package domain

// Plan is the structured financial plan produced for one turn. It is derived
// output and is not persisted independently of the session history.
type Plan struct {
	Goal            string   `json:"goal"`
	Steps           []string `json:"steps"`
	Timeline        string   `json:"timeline"`
	EstimatedCost   string   `json:"estimated_cost,omitempty"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`

	// Retrieval provenance: topics and categories of the advice entries
	// that fed the generation prompt, in retrieval order.
	TopicsUsed     []string `json:"topics_used"`
	CategoriesUsed []string `json:"categories_used"`
}

// Advice is a piece of reference text in the knowledge base, tagged with
// topic and category for filtered lookup. Entries are immutable once added.
type Advice struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Topic    string `json:"topic"`
	Category string `json:"category"`
}
