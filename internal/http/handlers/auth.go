package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest follows the OAuth2 password form: username may hold an email.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email, username and password are required"})
		return
	}

	user, err := h.Auth.Signup(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Audit.LogSignup(c.Request.Context(), user.ID, requestInfo(c))
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Audit.LogLoginFailed(c.Request.Context(), req.Username, requestInfo(c))
		respondError(c, err)
		return
	}

	h.Audit.LogLogin(c.Request.Context(), res.User.ID, requestInfo(c))
	c.JSON(http.StatusOK, TokenResponse{AccessToken: res.AccessToken, TokenType: res.TokenType})
}

// TestToken echoes the user the bearer token resolves to.
func (h *Handler) TestToken(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// Activity lists the caller's recent audit entries.
func (h *Handler) Activity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.Audit.Recent(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
