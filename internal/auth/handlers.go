package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// AuthController serves the JSON credential endpoints of the API.
type AuthController struct {
	service     *Service
	middleware  *Middleware
	rateLimiter *RateLimiter
	onLogin     func(result string)
}

func NewAuthController(service *Service, middleware *Middleware, rateLimiter *RateLimiter) *AuthController {
	return &AuthController{
		service:     service,
		middleware:  middleware,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes mounts register/login (public) and logout/user (bearer) on api.
func (ac *AuthController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/register", ac.Register)
	api.POST("/login", ac.Login)

	protected := api.Group("", ac.middleware.RequireBearer())
	protected.POST("/logout", ac.Logout)
	protected.GET("/user", ac.CurrentUser)
}

// OnLogin registers a callback invoked with "success", "failure",
// "locked" or "error" after every login attempt.
func (ac *AuthController) OnLogin(fn func(result string)) {
	ac.onLogin = fn
}

func (ac *AuthController) observeLogin(result string) {
	if ac.onLogin != nil {
		ac.onLogin(result)
	}
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := ac.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUsernameRequired),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrUsernameInvalid),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Registration failed for %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	log.Printf("Registered user %s (id=%d)", user.Username, user.ID)
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Username: user.Username})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
			ac.observeLogin("locked")
			tooManyAttempts(c, retryAfter)
			return
		}
	}

	session, err := ac.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			log.Printf("Login failed for %q: %v", req.Username, err)
			ac.observeLogin("error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if ac.rateLimiter != nil {
			if locked, retryAfter := ac.rateLimiter.RecordFailure(clientIP, req.Username); locked {
				log.Printf("Login locked out for %q from %s", req.Username, clientIP)
				ac.observeLogin("locked")
				tooManyAttempts(c, retryAfter)
				return
			}
		}
		ac.observeLogin("failure")
		c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Username)
	}
	ac.observeLogin("success")

	c.JSON(http.StatusOK, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      UserResponse{ID: session.User.ID, Username: session.User.Username},
	})
}

// Logout revokes the bearer token used for this request.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.service.Logout(c.Request.Context(), GetClaims(c)); err != nil {
		log.Printf("Logout failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) CurrentUser(c *gin.Context) {
	user, err := ac.service.GetUserByID(c.Request.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
			return
		}
		log.Printf("Failed to load current user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Username: user.Username})
}

func tooManyAttempts(c *gin.Context, retryAfter time.Duration) {
	c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "too many login attempts",
		"retry_after": retryAfter.String(),
	})
}
