package domain

import "time"

// KeywordType distinguishes ordinary generated keywords from urgent-news ones.
type KeywordType string

const (
	KeywordGeneral KeywordType = "GENERAL"
	KeywordUrgent  KeywordType = "URGENT"
)

// Keyword pairs a search keyword with its type.
type Keyword struct {
	Text string
	Type KeywordType
}

// KeywordSet is one day's generated keywords, ordered per category. It is
// transient; only its usage records are persisted.
type KeywordSet struct {
	Society  []Keyword
	Economy  []Keyword
	Politics []Keyword
	Culture  []Keyword
	IT       []Keyword
}

// ByCategory returns the per-category lists keyed by their section.
func (s KeywordSet) ByCategory() map[NewsCategory][]Keyword {
	return map[NewsCategory][]Keyword{
		CategorySociety:  s.Society,
		CategoryEconomy:  s.Economy,
		CategoryPolitics: s.Politics,
		CategoryCulture:  s.Culture,
		CategoryIT:       s.IT,
	}
}

// Flatten merges all category lists into plain keyword strings, preserving the
// category order of Categories().
func (s KeywordSet) Flatten() []string {
	byCat := s.ByCategory()
	var out []string
	for _, cat := range Categories() {
		for _, kw := range byCat[cat] {
			out = append(out, kw.Text)
		}
	}
	return out
}

// KeywordUsage records that a keyword was used for a category on a given day.
// The (keyword, category, used date) triple is unique; repeats increment
// UseCount instead of creating new rows.
type KeywordUsage struct {
	Keyword  string
	Type     KeywordType
	Category NewsCategory
	UsedDate time.Time
	UseCount int
}
