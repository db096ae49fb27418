package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/client"
	"github.com/mrlokans/library/internal/credentials"
	"github.com/mrlokans/library/internal/library"
)

// UIController renders the book pages. It never touches the database:
// every read and write goes through the API client, which takes the
// caller's bearer credential from the session.
type UIController struct {
	api      *client.Client
	sessions *SessionManager
	creds    credentials.Store
}

func NewUIController(api *client.Client, sessions *SessionManager, creds credentials.Store) *UIController {
	return &UIController{
		api:      api,
		sessions: sessions,
		creds:    creds,
	}
}

// RequireLogin redirects to /login when the session holds no credential.
func (ui *UIController) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ui.creds.Token(c.Request.Context())
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, loginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (ui *UIController) render(c *gin.Context, status int, name string, data gin.H) {
	ctx := c.Request.Context()
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = ui.sessions.PopFlash(ctx)
	}
	data["CSRFField"] = csrfField(c)
	data["Username"] = ui.sessions.Username(ctx)
	c.HTML(status, name, data)
}

// handleSessionExpired clears a credential the API no longer accepts and
// sends the browser to /login. It reports whether it handled err.
func (ui *UIController) handleSessionExpired(c *gin.Context, err error) bool {
	if !client.IsUnauthorized(err) {
		return false
	}
	ctx := c.Request.Context()
	if clearErr := ui.creds.Clear(ctx); clearErr != nil {
		log.Printf("Failed to clear expired credential: %v", clearErr)
	}
	ui.sessions.Remove(ctx, SessionKeyUsername)
	ui.sessions.PutFlash(ctx, FlashError, "Your session has expired. Please log in again.")
	c.Redirect(http.StatusSeeOther, loginURL(c.Request.URL.RequestURI()))
	return true
}

func (ui *UIController) BookList(c *gin.Context) {
	books, err := ui.api.Books().GetAll(c.Request.Context())
	if err != nil {
		if ui.handleSessionExpired(c, err) {
			return
		}
		log.Printf("Failed to load books: %v", err)
		ui.render(c, http.StatusBadGateway, "books", gin.H{
			"Title": "Books",
			"Books": []client.Book{},
			"Flash": &Flash{Kind: FlashError, Message: errorMessage(err)},
		})
		return
	}

	ui.render(c, http.StatusOK, "books", gin.H{
		"Title": "Books",
		"Books": books,
	})
}

func (ui *UIController) NewBookPage(c *gin.Context) {
	ui.renderForm(c, http.StatusOK, formPage{action: "/book/new"}, library.BookForm{}, nil)
}

func (ui *UIController) CreateBook(c *gin.Context) {
	page := formPage{action: "/book/new"}
	form := bookFormFromRequest(c)
	if err := form.Validate(); err != nil {
		ui.renderInvalidForm(c, page, form, err)
		return
	}

	if _, err := ui.api.Books().Create(c.Request.Context(), form.Normalize()); err != nil {
		ui.renderFailedSubmit(c, page, form, err)
		return
	}

	ui.sessions.PutFlash(c.Request.Context(), FlashSuccess, "Book created successfully")
	c.Redirect(http.StatusSeeOther, "/")
}

func (ui *UIController) EditBookPage(c *gin.Context) {
	id, ok := ui.bookID(c)
	if !ok {
		return
	}

	book, err := ui.api.Books().GetByID(c.Request.Context(), id)
	if err != nil {
		ui.redirectHome(c, err)
		return
	}

	page := formPage{action: editPath(id), editing: true}
	ui.renderForm(c, http.StatusOK, page, library.FormFromBook(*book), nil)
}

func (ui *UIController) UpdateBook(c *gin.Context) {
	id, ok := ui.bookID(c)
	if !ok {
		return
	}

	page := formPage{action: editPath(id), editing: true}
	form := bookFormFromRequest(c)
	if err := form.Validate(); err != nil {
		ui.renderInvalidForm(c, page, form, err)
		return
	}

	if _, err := ui.api.Books().Update(c.Request.Context(), id, form.Normalize()); err != nil {
		if client.IsNotFound(err) {
			ui.redirectHome(c, err)
			return
		}
		ui.renderFailedSubmit(c, page, form, err)
		return
	}

	ui.sessions.PutFlash(c.Request.Context(), FlashSuccess, "Book updated successfully")
	c.Redirect(http.StatusSeeOther, "/")
}

// DeleteBookPage asks for confirmation before the destructive POST.
func (ui *UIController) DeleteBookPage(c *gin.Context) {
	id, ok := ui.bookID(c)
	if !ok {
		return
	}

	book, err := ui.api.Books().GetByID(c.Request.Context(), id)
	if err != nil {
		ui.redirectHome(c, err)
		return
	}

	ui.render(c, http.StatusOK, "book_delete", gin.H{
		"Title": "Delete " + book.Name,
		"Book":  book,
	})
}

func (ui *UIController) DeleteBook(c *gin.Context) {
	id, ok := ui.bookID(c)
	if !ok {
		return
	}

	message, err := ui.api.Books().Delete(c.Request.Context(), id)
	if err != nil {
		ui.redirectHome(c, err)
		return
	}

	ui.sessions.PutFlash(c.Request.Context(), FlashSuccess, message)
	c.Redirect(http.StatusSeeOther, "/")
}

type formPage struct {
	action  string
	editing bool
}

func (ui *UIController) renderForm(c *gin.Context, status int, page formPage, form library.BookForm, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	title := "New book"
	if page.editing {
		title = "Edit " + form.Name
	}
	data["Title"] = title
	data["Action"] = page.action
	data["Editing"] = page.editing
	data["Form"] = form
	ui.render(c, status, "book_form", data)
}

// renderInvalidForm re-renders a form that failed local validation. No
// request has been sent to the API.
func (ui *UIController) renderInvalidForm(c *gin.Context, page formPage, form library.BookForm, err error) {
	data := gin.H{"Flash": &Flash{Kind: FlashError, Message: err.Error()}}
	var validationErr *library.ValidationError
	if errors.As(err, &validationErr) {
		data["Errors"] = validationErr.Details()
	}
	ui.renderForm(c, http.StatusBadRequest, page, form, data)
}

func (ui *UIController) renderFailedSubmit(c *gin.Context, page formPage, form library.BookForm, err error) {
	if ui.handleSessionExpired(c, err) {
		return
	}
	status := http.StatusBadGateway
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	} else {
		log.Printf("Book submission failed: %v", err)
	}
	ui.renderForm(c, status, page, form, gin.H{
		"Flash": &Flash{Kind: FlashError, Message: errorMessage(err)},
	})
}

// redirectHome sends the browser back to the list with an error toast.
func (ui *UIController) redirectHome(c *gin.Context, err error) {
	if ui.handleSessionExpired(c, err) {
		return
	}
	if !client.IsNotFound(err) {
		log.Printf("Book request failed: %v", err)
	}
	ui.sessions.PutFlash(c.Request.Context(), FlashError, errorMessage(err))
	c.Redirect(http.StatusSeeOther, "/")
}

func (ui *UIController) bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		ui.redirectHome(c, library.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}

// bookFormFromRequest reads the posted fields. An unparsable page count
// becomes 0 so validation reports it like a missing one.
func bookFormFromRequest(c *gin.Context) library.BookForm {
	pageCount, err := strconv.Atoi(strings.TrimSpace(c.PostForm("pageCount")))
	if err != nil {
		pageCount = 0
	}
	return library.BookForm{
		Name:        c.PostForm("name"),
		ISBN:        c.PostForm("isbn"),
		Description: c.PostForm("description"),
		PageCount:   pageCount,
		Author:      c.PostForm("author"),
	}
}

// errorMessage is the text shown in an error toast.
func errorMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, library.ErrNotFound):
		return library.ErrNotFound.Error()
	default:
		return "The library service is unavailable. Please try again."
	}
}

func editPath(id uint) string {
	return "/book/edit/" + strconv.FormatUint(uint64(id), 10)
}
