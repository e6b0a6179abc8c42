package model

const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

type Post struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	Status          string `json:"status"`
	FeaturedAssetID int64  `json:"featured_asset_id,omitempty"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}

type Asset struct {
	ID      int64  `json:"id"`
	PostID  int64  `json:"post_id"`
	FileKey string `json:"file_key"`
	Mime    string `json:"mime"`
	Ctime   int64  `json:"ctime"`
}
