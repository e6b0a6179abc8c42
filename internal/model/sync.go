package model

const (
	SyncActionPublish = "publish"
	SyncActionUpdate  = "update"
	SyncActionDelete  = "delete"
)

// SyncRequest is the wire body of one host-to-target push. The signature
// covers every other field; it is stripped before verification and never
// part of the signed payload.
type SyncRequest struct {
	Action           string   `json:"action,omitempty"`
	HostPostID       int64    `json:"host_post_id"`
	Title            string   `json:"title,omitempty"`
	Content          string   `json:"content,omitempty"`
	Excerpt          string   `json:"excerpt,omitempty"`
	Categories       []string `json:"categories,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	FeaturedImageURL string   `json:"featured_image_url,omitempty"`
	SourceURL        string   `json:"source_url"`
	Signature        string   `json:"signature,omitempty"`
}

// Mapping associates a host post (scoped by its source site URL) with
// the post it produced locally. At most one mapping exists per
// (host_post_id, source_url) pair.
type Mapping struct {
	TargetPostID int64  `json:"target_post_id"`
	HostPostID   int64  `json:"host_post_id"`
	SourceURL    string `json:"source_url"`
	Mtime        int64  `json:"mtime"`
}

type Target struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Key     string `json:"key"`
	AddedAt int64  `json:"added_at"`
}
