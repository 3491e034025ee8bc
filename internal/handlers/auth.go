package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"healteex/api/internal/models"
	"healteex/api/internal/service"
)

type signupRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

func (h HandlerSet) SignupRequest(c *gin.Context) {
	var req signupRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.signupService.RequestSignup(c.Request.Context(), req.Email, models.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"role": err.Error()})
		case errors.Is(err, service.ErrActiveTokenExists):
			c.JSON(http.StatusBadRequest, gin.H{"email": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"detail":             "Verification email sent.",
		"expires_in_minutes": int(h.cfg.Signup.TokenLifetime.Minutes()),
	})
}

type signupVerifyBody struct {
	Token      string `json:"token" binding:"required"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RememberMe bool   `json:"remember_me"`
}

func (h HandlerSet) SignupVerify(c *gin.Context) {
	var req signupVerifyBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.signupService.VerifySignup(c.Request.Context(), service.VerifySignupInput{
		Token:      req.Token,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignupToken):
			c.JSON(http.StatusBadRequest, gin.H{"token": "Invalid or expired token."})
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusBadRequest, gin.H{"token": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, pair)
}

type legacyTokenBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) ObtainLegacyToken(c *gin.Context) {
	var req legacyTokenBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.ObtainLegacyToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to log in with provided credentials."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type createJWTBody struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role"`
	RememberMe bool   `json:"remember_me"`
}

func (h HandlerSet) CreateJWT(c *gin.Context) {
	var req createJWTBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email is required"})
		return
	}

	pair, err := h.authService.LoginPassword(c.Request.Context(), service.LoginInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Role:       models.Role(req.Role),
		RememberMe: req.RememberMe,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrAmbiguousAccount):
			c.JSON(http.StatusBadRequest, gin.H{"email": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

type refreshJWTBody struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h HandlerSet) RefreshJWT(c *gin.Context) {
	var req refreshJWTBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, pair)
}

type verifyJWTBody struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) VerifyJWT(c *gin.Context) {
	var req verifyJWTBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authService.VerifyToken(req.Token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired"})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

type googleSignInBody struct {
	IDToken    string `json:"id_token" binding:"required"`
	Role       string `json:"role"`
	RememberMe bool   `json:"remember_me"`
}

func (h HandlerSet) GoogleSignIn(c *gin.Context) {
	var req googleSignInBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.googleService.SignIn(c.Request.Context(), service.GoogleSignInInput{
		IDToken:    req.IDToken,
		Role:       models.Role(req.Role),
		RememberMe: req.RememberMe,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFederationDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidGoogleToken),
			errors.Is(err, service.ErrEmailNotVerified),
			errors.Is(err, service.ErrAmbiguousAccount),
			errors.Is(err, service.ErrRoleConflict),
			errors.Is(err, service.ErrInvalidRole),
			errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}
