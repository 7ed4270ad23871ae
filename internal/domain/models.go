package domain

// DefaultPageSize is the number of questions returned per page when no size is configured.
const DefaultPageSize = 10

// CategoryID identifies a category. Stores may encode it differently; callers only compare it with ==.
type CategoryID int

// AllCategories is the quiz scope that draws from every category.
const AllCategories CategoryID = 0

// Category is a read-only question grouping seeded alongside the question bank.
type Category struct {
	ID   CategoryID `json:"id"`
	Type string     `json:"type"`
}

// Question is a trivia question as stored and as returned to clients.
type Question struct {
	ID         int        `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Category   CategoryID `json:"category"`
	Difficulty int        `json:"difficulty"`
}

// QuestionDraft carries validated fields for a question that has no id yet.
type QuestionDraft struct {
	Question   string
	Answer     string
	Category   CategoryID
	Difficulty int
}

// CategoryMap indexes category labels by id.
func CategoryMap(categories []Category) map[CategoryID]string {
	m := make(map[CategoryID]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Type
	}
	return m
}
