// Package web is the server-rendered frontend. It holds no database of its
// own besides the session store and reaches books only through the API
// client.
package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/client"
	"github.com/mrlokans/library/internal/credentials"
)

type Config struct {
	APIURL     string
	HTTPClient *http.Client // optional
	Sessions   *SessionManager

	// CSRFKey enables CSRF protection when set. See CSRFKey().
	CSRFKey       []byte
	SecureCookies bool
}

func NewRouter(cfg Config) (*gin.Engine, error) {
	creds := credentials.NewSessionStore(cfg.Sessions.SessionManager)
	opts := []client.Option{client.WithCredentials(creds)}
	if cfg.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(cfg.HTTPClient))
	}
	api, err := client.New(cfg.APIURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	ui := NewUIController(api, cfg.Sessions, creds)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved.
	if len(cfg.CSRFKey) > 0 {
		router.Use(CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies))
	}
	router.Use(cfg.Sessions.LoadSession())

	router.SetHTMLTemplate(loadTemplates())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/login", ui.LoginPage)
	router.POST("/login", ui.Login)
	router.GET("/register", ui.RegisterPage)
	router.POST("/register", ui.Register)
	router.POST("/logout", ui.Logout)

	pages := router.Group("/", ui.RequireLogin())
	pages.GET("/", ui.BookList)
	pages.GET("/book/new", ui.NewBookPage)
	pages.POST("/book/new", ui.CreateBook)
	pages.GET("/book/edit/:id", ui.EditBookPage)
	pages.POST("/book/edit/:id", ui.UpdateBook)
	pages.GET("/book/delete/:id", ui.DeleteBookPage)
	pages.POST("/book/delete/:id", ui.DeleteBook)

	return router, nil
}
