package model

const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "post_tag"
)

type Term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}
