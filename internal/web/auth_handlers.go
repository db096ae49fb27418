package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/client"
)

func (ui *UIController) LoginPage(c *gin.Context) {
	ui.render(c, http.StatusOK, "login", gin.H{
		"Title": "Log in",
		"Next":  sanitizeRedirectPath(c.Query("next")),
	})
}

func (ui *UIController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))

	fail := func(status int, message string) {
		ui.render(c, status, "login", gin.H{
			"Title":        "Log in",
			"Next":         next,
			"FormUsername": username,
			"Flash":        &Flash{Kind: FlashError, Message: message},
		})
	}

	if username == "" || password == "" {
		fail(http.StatusBadRequest, "Username and password are required")
		return
	}

	if err := ui.signIn(c.Request.Context(), username, password); err != nil {
		status, message := loginFailure(err)
		fail(status, message)
		return
	}

	ui.sessions.PutFlash(c.Request.Context(), FlashSuccess, "Welcome back, "+username)
	c.Redirect(http.StatusSeeOther, next)
}

func (ui *UIController) RegisterPage(c *gin.Context) {
	ui.render(c, http.StatusOK, "register", gin.H{"Title": "Create an account"})
}

func (ui *UIController) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	fail := func(status int, message string) {
		ui.render(c, status, "register", gin.H{
			"Title":        "Create an account",
			"FormUsername": username,
			"Flash":        &Flash{Kind: FlashError, Message: message},
		})
	}

	if username == "" || password == "" {
		fail(http.StatusBadRequest, "Username and password are required")
		return
	}
	if password != c.PostForm("confirm") {
		fail(http.StatusBadRequest, "Passwords do not match")
		return
	}

	ctx := c.Request.Context()
	if _, err := ui.api.Auth().Register(ctx, username, password); err != nil {
		status, message := loginFailure(err)
		fail(status, message)
		return
	}
	if err := ui.signIn(ctx, username, password); err != nil {
		status, message := loginFailure(err)
		fail(status, message)
		return
	}

	ui.sessions.PutFlash(ctx, FlashSuccess, "Account created. Welcome, "+username)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout revokes the token on the API and empties the session slot. The
// slot is emptied even when the API cannot be reached.
func (ui *UIController) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := ui.api.Auth().Logout(ctx); err != nil {
		log.Printf("Logout request failed: %v", err)
		if clearErr := ui.creds.Clear(ctx); clearErr != nil {
			log.Printf("Failed to clear credential: %v", clearErr)
		}
	}
	ui.sessions.Remove(ctx, SessionKeyUsername)
	ui.sessions.PutFlash(ctx, FlashSuccess, "You have been logged out")
	c.Redirect(http.StatusSeeOther, "/login")
}

// signIn logs in through the API. The client stores the token in the
// session slot; the username is kept alongside for the header.
func (ui *UIController) signIn(ctx context.Context, username, password string) error {
	result, err := ui.api.Auth().Login(ctx, username, password)
	if err != nil {
		return err
	}
	ui.sessions.Put(ctx, SessionKeyUsername, result.User.Username)
	return nil
}

func loginFailure(err error) (int, string) {
	if client.IsUnauthorized(err) {
		return http.StatusUnauthorized, "Invalid username or password"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}
	log.Printf("Auth request failed: %v", err)
	return http.StatusBadGateway, errorMessage(err)
}
