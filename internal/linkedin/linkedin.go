package linkedin

const (
	// DefaultAuthBaseURL is the base url of LinkedIn's OAuth endpoints
	DefaultAuthBaseURL = "https://www.linkedin.com"

	// DefaultAPIBaseURL is the base url of LinkedIn's REST api
	DefaultAPIBaseURL = "https://api.linkedin.com"

	// Scopes are the OAuth scopes requested during login. openid, profile
	// and email cover identity; w_member_social is what allows posting on
	// the member's behalf.
	Scopes = "openid profile email w_member_social"

	// PersonURNPrefix is the namespace LinkedIn uses to identify members.
	// The author urn of a post is this prefix plus the member's subject id.
	PersonURNPrefix = "urn:li:person:"

	// FeedShareImageRecipe tells the assets api what kind of media is being
	// registered. Only images are published by this service.
	FeedShareImageRecipe = "urn:li:digitalmediaRecipe:feedshare-image"

	// UserGeneratedContentURN is the serviceRelationships identifier the
	// assets api expects for member-owned uploads.
	UserGeneratedContentURN = "urn:li:userGeneratedContent"

	// VisibilityPublic makes the created post visible to anyone
	VisibilityPublic = "PUBLIC"

	// LifecyclePublished publishes the post immediately on creation
	LifecyclePublished = "PUBLISHED"

	// feedUpdateURL is the public permalink prefix for a created post
	feedUpdateURL = "https://www.linkedin.com/feed/update/"
)

// Token is the bearer credential returned by the OAuth code exchange. It
// is never stored by this service; the caller is responsible for custody
// and expiry tracking.
type Token struct {
	// AccessToken is the opaque bearer string
	AccessToken string `json:"access_token"`

	// ExpiresIn is the declared token lifetime in seconds
	ExpiresIn int64 `json:"expires_in_seconds"`
}

// Identity is the normalized member identity returned by the userinfo
// endpoint.
type Identity struct {
	// UserID is the provider's subject ("sub") id for the member
	UserID string `json:"user_id"`

	// AuthorURN is the urn used to attribute a post to the member. Derived
	// from UserID, never issued by the provider directly.
	AuthorURN string `json:"author_urn"`

	// Name is the member's display name
	Name string `json:"full_name"`

	Email string `json:"email"`

	// Raw is the unmodified provider payload, returned so callers can get
	// at fields this service does not model
	Raw map[string]interface{} `json:"raw"`
}

// UploadTarget is the provider-issued upload slot created by step 1 of the
// publish workflow. It lives for a single publish call: created by
// RegisterUpload, consumed by Upload and CreatePost, never reused.
type UploadTarget struct {
	// UploadURL is a pre-authorized uri the raw image bytes are PUT to.
	// No auth header is expected on that call.
	UploadURL string

	// AssetURN identifies the registered, not-yet-populated media asset
	AssetURN string
}

// PublishResult is the outcome of a successful three-step publish.
type PublishResult struct {
	// PostID is the provider-issued id (urn) of the created post
	PostID string `json:"post_id"`

	// AssetURN identifies the image asset the post references, empty for
	// text-only posts
	AssetURN string `json:"asset_urn,omitempty"`

	// Link is the public permalink of the post
	Link string `json:"link"`
}

// AuthorURN derives the post attribution urn from a member's subject id.
func AuthorURN(sub string) string {
	return PersonURNPrefix + sub
}
