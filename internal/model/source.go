package model

// SearchCategory is one of the four fixed buckets used to diversify and
// label search results.
type SearchCategory string

const (
	CategoryOfficial SearchCategory = "official"
	CategoryNews     SearchCategory = "news"
	CategoryBlog     SearchCategory = "blog"
	CategoryResearch SearchCategory = "research"
)

// Categories lists all search categories in their fixed fan-out order.
func Categories() []SearchCategory {
	return []SearchCategory{CategoryOfficial, CategoryNews, CategoryBlog, CategoryResearch}
}

// Label returns the Russian display label for the category. The switch is
// exhaustive over the closed set; an unknown value falls back to the raw
// string so a decoding bug is visible rather than silent.
func (c SearchCategory) Label() string {
	switch c {
	case CategoryOfficial:
		return "Официальные"
	case CategoryNews:
		return "Новости"
	case CategoryBlog:
		return "Блоги"
	case CategoryResearch:
		return "Исследования"
	}
	return string(c)
}

// QuerySuffix returns the fixed phrase appended to the base query for this
// category.
func (c SearchCategory) QuerySuffix() string {
	switch c {
	case CategoryOfficial:
		return "официальный сайт официальный источник"
	case CategoryNews:
		return "новости"
	case CategoryBlog:
		return "блог статья"
	case CategoryResearch:
		return "исследование научная статья исследование"
	}
	return ""
}

// CandidateSource is one search result tagged with the category it was
// retrieved under. The same URL may appear under several categories.
type CandidateSource struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Snippet  string         `json:"snippet"`
	Category SearchCategory `json:"category"`
}
