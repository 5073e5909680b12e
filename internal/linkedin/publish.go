package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// mediaUploadMechanism is the uploadMechanism key under which the assets
// api returns the pre-authorized upload url.
const mediaUploadMechanism = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"

// PublishRequest carries everything the three-step publish workflow
// needs. All coordination state flows through here; nothing is kept on
// the client between steps or between calls.
type PublishRequest struct {
	AccessToken string
	AuthorURN   string
	Caption     string
	Image       []byte
	MIMEType    string
}

// Publish runs the fixed three-step workflow: register the upload slot,
// PUT the raw image bytes, create the post referencing the asset. Each
// step consumes the previous step's output immediately; the first failing
// step aborts the whole operation and later steps never execute. There is
// no compensation for a registered-but-unused asset.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	logger := c.logger.With(zap.String("authorUrn", req.AuthorURN))

	target, err := c.RegisterUpload(ctx, req.AccessToken, req.AuthorURN)
	if err != nil {
		const msg = "unable to register upload"
		logger.Error(msg, zap.Error(err))
		return nil, err
	}
	logger.Debug("registered upload", zap.String("assetUrn", target.AssetURN))

	if err := c.Upload(ctx, target.UploadURL, req.Image, req.MIMEType); err != nil {
		const msg = "unable to upload image"
		logger.Error(msg, zap.Error(err))
		return nil, err
	}
	logger.Debug("uploaded image", zap.Int("size", len(req.Image)))

	res, err := c.CreatePost(ctx, req.AccessToken, req.AuthorURN, req.Caption, target.AssetURN)
	if err != nil {
		const msg = "unable to create post"
		logger.Error(msg, zap.Error(err))
		return nil, err
	}
	logger.Debug("created post", zap.String("postId", res.PostID))

	return res, nil
}

type registerUploadPayload struct {
	RegisterUploadRequest registerUploadRequest `json:"registerUploadRequest"`
}

type registerUploadRequest struct {
	// Recipes name the media kind being registered
	Recipes []string `json:"recipes"`

	// Owner is the author urn that will own the asset
	Owner string `json:"owner"`

	ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

// RegisterUpload is step 1 of the publish workflow. It asks the assets
// api for an upload slot and returns the pre-authorized upload url plus
// the asset urn the eventual post will reference.
func (c *Client) RegisterUpload(ctx context.Context, accessToken, ownerURN string) (*UploadTarget, error) {
	payload := registerUploadPayload{
		RegisterUploadRequest: registerUploadRequest{
			Recipes: []string{FeedShareImageRecipe},
			Owner:   ownerURN,
			ServiceRelationships: []serviceRelationship{
				{
					RelationshipType: "OWNER",
					Identifier:       UserGeneratedContentURN,
				},
			},
		},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		const msg = "unable to marshal register upload payload"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/v2/assets?action=registerUpload", bytes.NewReader(b))
	if err != nil {
		const msg = "unable to create register upload request"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		const msg = "unable to register upload"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(StepRegister, resp)
	}

	var out struct {
		Value struct {
			UploadMechanism map[string]struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"uploadMechanism"`
			Asset string `json:"asset"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		const msg = "unable to decode register upload response"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	return &UploadTarget{
		UploadURL: out.Value.UploadMechanism[mediaUploadMechanism].UploadURL,
		AssetURN:  out.Value.Asset,
	}, nil
}

// Upload is step 2 of the publish workflow: a direct PUT of the raw image
// bytes to the upload url from step 1. The url is pre-authorized, so no
// auth header is sent. Anything outside {200, 201} fails the workflow.
func (c *Client) Upload(ctx context.Context, uploadURL string, image []byte, mimeType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		const msg = "unable to create upload request"
		c.logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	resp, err := c.c.Do(req)
	if err != nil {
		const msg = "unable to upload image"
		c.logger.Error(msg, zap.Error(err))
		return fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return upstreamError(StepUpload, resp)
	}

	return nil
}

type ugcPostPayload struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent specificContent `json:"specificContent"`
	Visibility      visibility      `json:"visibility"`
}

type specificContent struct {
	ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
}

type shareContent struct {
	ShareCommentary    textBlock    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type textBlock struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

type visibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// CreatePost is step 3 of the publish workflow. It creates a published,
// publicly visible post attributed to authorURN. An empty assetURN
// produces a text-only post. Only a 201 from the ugcPosts api counts as
// success; the post id comes from the X-RestLi-Id header with the body id
// as fallback.
func (c *Client) CreatePost(ctx context.Context, accessToken, authorURN, caption, assetURN string) (*PublishResult, error) {
	share := shareContent{
		ShareCommentary:    textBlock{Text: caption},
		ShareMediaCategory: "NONE",
	}
	if assetURN != "" {
		share.ShareMediaCategory = "IMAGE"
		share.Media = []shareMedia{
			{
				Status: "READY",
				Media:  assetURN,
			},
		}
	}

	payload := ugcPostPayload{
		Author:          authorURN,
		LifecycleState:  LifecyclePublished,
		SpecificContent: specificContent{ShareContent: share},
		Visibility:      visibility{MemberNetworkVisibility: VisibilityPublic},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		const msg = "unable to marshal post payload"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/v2/ugcPosts", bytes.NewReader(b))
	if err != nil {
		const msg = "unable to create post request"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.c.Do(req)
	if err != nil {
		const msg = "unable to create post"
		c.logger.Error(msg, zap.Error(err))
		return nil, fmt.Errorf(msg+": %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, upstreamError(StepCreate, resp)
	}

	postID := resp.Header.Get("X-RestLi-Id")
	if postID == "" {
		var out struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil {
			postID = out.ID
		}
	}

	if postID == "" {
		c.logger.Error("post created but no id returned")
		return nil, ErrNoPostID
	}

	return &PublishResult{
		PostID:   postID,
		AssetURN: assetURN,
		Link:     feedUpdateURL + postID,
	}, nil
}
