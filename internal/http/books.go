package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/library"
	"github.com/mrlokans/library/internal/metrics"
)

// BooksController serves /api/book. Every handler expects the bearer
// middleware to have set the caller's user id.
type BooksController struct {
	service *library.Service
	metrics *metrics.Metrics
}

func NewBooksController(service *library.Service, m *metrics.Metrics) *BooksController {
	return &BooksController{
		service: service,
		metrics: m,
	}
}

func (controller *BooksController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/book", controller.GetAllBooks)
	api.GET("/book/:id", controller.GetBook)
	api.POST("/book", controller.CreateBook)
	api.PUT("/book/:id", controller.UpdateBook)
	api.DELETE("/book/:id", controller.DeleteBook)
}

func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.service.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		controller.observe("list", respondLibraryError(c, err, "list books"))
		return
	}
	controller.observe("list", "ok")
	c.JSON(http.StatusOK, books)
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		controller.observe("get", "not_found")
		return
	}

	book, err := controller.service.Get(c.Request.Context(), auth.GetUserID(c), id)
	if err != nil {
		controller.observe("get", respondLibraryError(c, err, "get book"))
		return
	}
	controller.observe("get", "ok")
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var form library.BookForm
	if err := c.ShouldBindJSON(&form); err != nil {
		controller.observe("create", "invalid")
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.Create(c.Request.Context(), auth.GetUserID(c), form)
	if err != nil {
		controller.observe("create", respondLibraryError(c, err, "create book"))
		return
	}
	controller.observe("create", "ok")
	c.JSON(http.StatusOK, book)
}

// UpdateBook replaces the fields present in the body and keeps the rest.
// id, ownerId and createdAt in the body are ignored.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		controller.observe("update", "not_found")
		return
	}

	var changes library.BookChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		controller.observe("update", "invalid")
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.service.Update(c.Request.Context(), auth.GetUserID(c), id, changes)
	if err != nil {
		controller.observe("update", respondLibraryError(c, err, "update book"))
		return
	}
	controller.observe("update", "ok")
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		controller.observe("delete", "not_found")
		return
	}

	if err := controller.service.Delete(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		controller.observe("delete", respondLibraryError(c, err, "delete book"))
		return
	}
	controller.observe("delete", "ok")
	respondSuccess(c, "Book deleted successfully")
}

func (controller *BooksController) observe(operation, result string) {
	controller.metrics.ObserveBookOperation(operation, result)
}
