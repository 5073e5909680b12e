package posts

import "time"

const (
	// CouchbaseScope is the Couchbase scope in which the publish records
	// are stored
	CouchbaseScope = "linkedin"

	// CouchbaseCollection is the Couchbase collection in which the publish
	// records are stored
	CouchbaseCollection = "posts"
)

// Record is the history entry written after a post has been successfully
// published. It records outcomes only; access tokens are never stored.
type Record struct {
	// ID of the record. The ID is the provider-issued post urn.
	ID string `json:"id"`

	// AuthorURN is the urn of the member the post is attributed to
	AuthorURN string `json:"authorUrn"`

	// Caption is the post text, post-normalization
	Caption string `json:"caption"`

	// AssetURN identifies the image asset the post references, empty for
	// text-only posts
	AssetURN string `json:"assetUrn"`

	// Link is the public permalink of the post
	Link string `json:"link"`

	// PublishedAt is the time the post was created on the network
	PublishedAt *time.Time `json:"publishedAt"`

	// CreatedAt is the time at which this record was written. Not to be
	// confused with PublishedAt.
	CreatedAt *time.Time `json:"createdAt"`
}

func FullyQualifiedCollectionName(bucket string) string {
	return "`" + bucket + "`" + "." + CouchbaseScope + "." + CouchbaseCollection
}
