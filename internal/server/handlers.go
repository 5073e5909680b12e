package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkedin-automator/internal/content"
	"linkedin-automator/internal/gemini"
	"linkedin-automator/internal/linkedin"
	"linkedin-automator/internal/posts"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LinkedIn Automator is running. Go to /login to authenticate.",
	})
}

// handleLogin redirects the member to LinkedIn's authorization page.
func (s *Server) handleLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, s.linkedin.AuthCodeURL())
}

// handleCallback exchanges the authorization code for an access token. A
// provider error and a missing code are both soft failures: echoed back
// as JSON without any outbound call being made.
func (s *Server) handleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusOK, gin.H{"error": errParam})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"error": linkedin.ErrNoCode.Error()})
		return
	}

	token, err := s.linkedin.Exchange(c.Request.Context(), code)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "Success",
		"access_token":       token.AccessToken,
		"expires_in_seconds": token.ExpiresIn,
		"message":            "Copy the access_token. You will need it for publishing.",
	})
}

func (s *Server) handleUserInfo(c *gin.Context) {
	accessToken := c.Query("access_token")
	if accessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token is required"})
		return
	}

	identity, err := s.linkedin.UserInfo(c.Request.Context(), accessToken)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, identity)
}

func (s *Server) handleGenerateImage(c *gin.Context) {
	prompt := c.PostForm("prompt")
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	img, err := s.content.GenerateImage(c.Request.Context(), prompt)
	if err != nil {
		s.metrics.IncGeneration("image", "error")
		s.renderError(c, err)
		return
	}
	s.metrics.IncGeneration("image", "ok")

	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func (s *Server) handleEnhancePrompt(c *gin.Context) {
	prompt := c.PostForm("prompt")
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	out, err := s.content.EnhancePrompt(c.Request.Context(), prompt)
	if err != nil {
		s.metrics.IncGeneration("text", "error")
		s.renderError(c, err)
		return
	}
	s.metrics.IncGeneration("text", "ok")

	c.String(http.StatusOK, out)
}

func (s *Server) handleImagePrompt(c *gin.Context) {
	post := c.PostForm("post")
	if post == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post is required"})
		return
	}

	out, err := s.content.ImagePromptFromPost(c.Request.Context(), post)
	if err != nil {
		s.metrics.IncGeneration("text", "error")
		s.renderError(c, err)
		return
	}
	s.metrics.IncGeneration("text", "ok")

	c.String(http.StatusOK, out)
}

func (s *Server) handleRecentNews(c *gin.Context) {
	out, err := s.content.RecentNews(c.Request.Context())
	if err != nil {
		s.metrics.IncGeneration("news", "error")
		s.renderError(c, err)
		return
	}
	s.metrics.IncGeneration("news", "ok")

	c.String(http.StatusOK, out)
}

// handlePublishImage runs the three-step publish workflow. The caller
// supplies everything: token, author urn, caption, and the image file.
// Failures identify which step failed and carry the upstream body.
func (s *Server) handlePublishImage(c *gin.Context) {
	accessToken := c.PostForm("access_token")
	authorURN := c.PostForm("author_urn")
	caption := c.PostForm("caption")

	if accessToken == "" || authorURN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token and author_urn are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		const msg = "unable to open uploaded file"
		s.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		const msg = "unable to read uploaded file"
		s.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	caption = content.Normalize(caption)

	res, err := s.linkedin.Publish(c.Request.Context(), linkedin.PublishRequest{
		AccessToken: accessToken,
		AuthorURN:   authorURN,
		Caption:     caption,
		Image:       image,
		MIMEType:    mimeType,
	})
	if err != nil {
		var ue *linkedin.UpstreamError
		if errors.As(err, &ue) && ue.Step != "" {
			s.metrics.IncPublishStepFailed(ue.Step)
		}
		s.renderError(c, err)
		return
	}

	s.recordPublish(res, authorURN, caption)

	c.JSON(http.StatusOK, gin.H{
		"status":  "Success",
		"post_id": res.PostID,
		"link":    res.Link,
	})
}

// recordPublish writes the history record when the store is enabled. A
// failed history write never fails the publish; it is logged only.
func (s *Server) recordPublish(res *linkedin.PublishResult, authorURN, caption string) {
	if s.history == nil {
		return
	}

	now := time.Now().UTC()
	rec := posts.Record{
		ID:          res.PostID,
		AuthorURN:   authorURN,
		Caption:     caption,
		AssetURN:    res.AssetURN,
		Link:        res.Link,
		PublishedAt: &now,
	}
	if err := s.history.Create(&rec); err != nil {
		s.logger.Error("unable to record publish", zap.Error(err), zap.String("postId", res.PostID))
	}
}

func (s *Server) handleListPosts(c *gin.Context) {
	if s.historyReader == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "publish history is not enabled"})
		return
	}

	records, err := s.historyReader.List(50)
	switch {
	case err == nil:
	case errors.Is(err, posts.ErrNotFound):
		records = []posts.Record{}
	default:
		const msg = "unable to list publish records"
		s.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": records})
}

func (s *Server) handleGetPost(c *gin.Context) {
	if s.historyReader == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "publish history is not enabled"})
		return
	}

	id := c.Param("id")
	rec, err := s.historyReader.Get(id)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no publish record with id " + id})
			return
		}
		const msg = "unable to get publish record"
		s.logger.Error(msg, zap.Error(err), zap.String("postId", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// renderError maps the failure taxonomy onto responses: upstream
// rejections become 502s carrying the step label and upstream body, a
// generation that produced nothing usable becomes a 500, and anything
// else is a generic internal error with the failure's message.
func (s *Server) renderError(c *gin.Context, err error) {
	var ue *linkedin.UpstreamError
	if errors.As(err, &ue) {
		body := gin.H{"error": "upstream rejection", "detail": ue.Body}
		if ue.Step != "" {
			body["error"] = ue.Step + " Failed"
		}
		c.JSON(http.StatusBadGateway, body)
		return
	}

	if errors.Is(err, gemini.ErrNoImage) || errors.Is(err, gemini.ErrNoText) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Error("handler failure", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
