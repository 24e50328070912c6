package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/server/models"
	"github.com/dmitrijs2005/gophshare/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	services.TokenPair
	User userResponse `json:"user"`
}

type createRequestBody struct {
	FileID  int64  `json:"fileId"`
	Message string `json:"message"`
}

type setStatusBody struct {
	Status string `json:"status"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt}
}

// bind decodes the JSON body or renders a 400.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, access.Invalid, "malformed request body")
		return false
	}
	return true
}

// idParam parses the :id path parameter or renders a 400.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, access.Invalid, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// --- auth ---

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}

	s.logger.Info(c.Request.Context(), "Registration request")

	u, err := s.users.Register(c.Request.Context(), req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	tokens, u, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{TokenPair: *tokens, User: toUserResponse(u)})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}

	tokens, err := s.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) me(c *gin.Context) {
	u, err := s.users.Me(c.Request.Context(), sessionFrom(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// --- files ---

func (s *Server) createUpload(c *gin.Context) {
	var req services.NewFile
	if !bind(c, &req) {
		return
	}

	up, err := s.files.CreateUpload(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, up)
}

func (s *Server) listOwned(c *gin.Context) {
	files, err := s.files.ListOwned(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *Server) listPublic(c *gin.Context) {
	files, err := s.files.ListPublic(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (s *Server) listOthersPrivate(c *gin.Context) {
	views, err := s.files.ListOthersPrivate(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) quickCheck(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := s.files.QuickCheck(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) downloadURL(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	dl, err := s.files.DownloadURL(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dl)
}

func (s *Server) deleteFile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.files.Delete(c.Request.Context(), sessionFrom(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- access requests ---

func (s *Server) createRequest(c *gin.Context) {
	var req createRequestBody
	if !bind(c, &req) {
		return
	}
	if req.FileID <= 0 {
		abortWithError(c, http.StatusBadRequest, access.Invalid, "fileId is required")
		return
	}

	out, err := s.requests.CreateRequest(c.Request.Context(), sessionFrom(c), req.FileID, req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) listReceived(c *gin.Context) {
	out, err := s.requests.ListReceived(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listSent(c *gin.Context) {
	out, err := s.requests.ListSent(c.Request.Context(), sessionFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) setStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var body setStatusBody
	if !bind(c, &body) {
		return
	}
	status, err := access.ParseDecision(body.Status)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out, err := s.requests.SetStatus(c.Request.Context(), sessionFrom(c), id, status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteRequest(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.requests.DeleteRequest(c.Request.Context(), sessionFrom(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
