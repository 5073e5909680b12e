package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider stands in for the assets and ugcPosts apis plus the
// pre-authorized upload host, counting how often each step is hit.
type fakeProvider struct {
	t *testing.T

	registerStatus int
	uploadStatus   int
	createStatus   int

	registerCalls int
	uploadCalls   int
	createCalls   int

	uploadAuthHeader string
	uploadedBody     []byte
	createPayload    map[string]interface{}

	srv *httptest.Server
}

func newFakeProvider(t *testing.T, registerStatus, uploadStatus, createStatus int) *fakeProvider {
	p := &fakeProvider{
		t:              t,
		registerStatus: registerStatus,
		uploadStatus:   uploadStatus,
		createStatus:   createStatus,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/assets", p.handleRegister)
	mux.HandleFunc("/upload", p.handleUpload)
	mux.HandleFunc("/v2/ugcPosts", p.handleCreate)

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)

	return p
}

func (p *fakeProvider) handleRegister(w http.ResponseWriter, r *http.Request) {
	p.registerCalls++

	require.Equal(p.t, "registerUpload", r.URL.Query().Get("action"))
	require.Equal(p.t, "Bearer tok-123", r.Header.Get("Authorization"))

	if p.registerStatus != http.StatusOK {
		w.WriteHeader(p.registerStatus)
		_, _ = w.Write([]byte(`{"message":"register denied"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
		"value": {
			"uploadMechanism": {
				"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest": {
					"uploadUrl": %q
				}
			},
			"asset": "urn:li:digitalmediaAsset:123"
		}
	}`, p.srv.URL+"/upload")
}

func (p *fakeProvider) handleUpload(w http.ResponseWriter, r *http.Request) {
	p.uploadCalls++
	p.uploadAuthHeader = r.Header.Get("Authorization")

	var err error
	p.uploadedBody, err = io.ReadAll(r.Body)
	require.NoError(p.t, err)

	if p.uploadStatus != http.StatusCreated {
		w.WriteHeader(p.uploadStatus)
		_, _ = w.Write([]byte(`{"message":"upload denied"}`))
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (p *fakeProvider) handleCreate(w http.ResponseWriter, r *http.Request) {
	p.createCalls++

	require.Equal(p.t, "Bearer tok-123", r.Header.Get("Authorization"))
	require.NoError(p.t, json.NewDecoder(r.Body).Decode(&p.createPayload))

	if p.createStatus != http.StatusCreated {
		w.WriteHeader(p.createStatus)
		_, _ = w.Write([]byte(`{"message":"create denied"}`))
		return
	}

	w.Header().Set("X-RestLi-Id", "urn:li:share:6789")
	w.WriteHeader(http.StatusCreated)
}

func (p *fakeProvider) client(t *testing.T) *Client {
	c, err := NewClient(zap.NewNop(), testConfig("", p.srv.URL))
	require.NoError(t, err)
	return c
}

func publishRequest() PublishRequest {
	return PublishRequest{
		AccessToken: "tok-123",
		AuthorURN:   "urn:li:person:abc123",
		Caption:     "Fresh off the press",
		Image:       []byte{0x89, 0x50, 0x4e, 0x47},
		MIMEType:    "image/png",
	}
}

func Test_Client_Publish(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		p := newFakeProvider(t, http.StatusOK, http.StatusCreated, http.StatusCreated)

		res, err := p.client(t).Publish(context.Background(), publishRequest())
		require.NoError(t, err)

		assert.Equal(t, "urn:li:share:6789", res.PostID)
		assert.Equal(t, "urn:li:digitalmediaAsset:123", res.AssetURN)
		assert.Contains(t, res.Link, "urn:li:share:6789")

		assert.Equal(t, 1, p.registerCalls)
		assert.Equal(t, 1, p.uploadCalls)
		assert.Equal(t, 1, p.createCalls)

		// the upload url is pre-authorized; no auth header goes with it
		assert.Empty(t, p.uploadAuthHeader)
		assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, p.uploadedBody)

		// the created post references the registered asset
		b, err := json.Marshal(p.createPayload)
		require.NoError(t, err)
		assert.Contains(t, string(b), "urn:li:digitalmediaAsset:123")
		assert.Contains(t, string(b), "PUBLISHED")
		assert.Contains(t, string(b), "PUBLIC")
	})

	t.Run("step 1 failure stops the workflow", func(t *testing.T) {
		p := newFakeProvider(t, http.StatusForbidden, http.StatusCreated, http.StatusCreated)

		_, err := p.client(t).Publish(context.Background(), publishRequest())
		require.Error(t, err)

		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, StepRegister, ue.Step)
		assert.Contains(t, ue.Body, "register denied")

		assert.Equal(t, 1, p.registerCalls)
		assert.Equal(t, 0, p.uploadCalls)
		assert.Equal(t, 0, p.createCalls)
	})

	t.Run("step 2 failure stops the workflow", func(t *testing.T) {
		p := newFakeProvider(t, http.StatusOK, http.StatusInternalServerError, http.StatusCreated)

		_, err := p.client(t).Publish(context.Background(), publishRequest())
		require.Error(t, err)

		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, StepUpload, ue.Step)
		assert.Contains(t, ue.Body, "upload denied")

		assert.Equal(t, 1, p.registerCalls)
		assert.Equal(t, 1, p.uploadCalls)
		assert.Equal(t, 0, p.createCalls)
	})

	t.Run("step 3 failure", func(t *testing.T) {
		p := newFakeProvider(t, http.StatusOK, http.StatusCreated, http.StatusUnprocessableEntity)

		_, err := p.client(t).Publish(context.Background(), publishRequest())
		require.Error(t, err)

		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, StepCreate, ue.Step)
		assert.Contains(t, ue.Body, "create denied")

		assert.Equal(t, 1, p.createCalls)
	})
}

func Test_Client_CreatePost_TextOnly(t *testing.T) {
	p := newFakeProvider(t, http.StatusOK, http.StatusCreated, http.StatusCreated)

	res, err := p.client(t).CreatePost(context.Background(), "tok-123", "urn:li:person:abc123", "just words", "")
	require.NoError(t, err)

	assert.Equal(t, "urn:li:share:6789", res.PostID)
	assert.Empty(t, res.AssetURN)

	b, err := json.Marshal(p.createPayload)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"NONE"`)
	assert.NotContains(t, string(b), "digitalmediaAsset")
}
