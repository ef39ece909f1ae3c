package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
)

const maxBookBodySize = 1 << 20 // 1 MB

type BooksController struct {
	catalog BookCatalog
}

func NewBooksController(catalog BookCatalog) *BooksController {
	return &BooksController{catalog: catalog}
}

// AddBookResponse is returned by POST /api/books.
type AddBookResponse struct {
	Book           *entities.CatalogBook   `json:"book"`
	CoercionIssues []catalog.CoercionIssue `json:"coercion_issues,omitempty"`
}

// ListBooks handles GET /api/books
// With ?sku= it returns the single book carrying that SKU instead of a page.
func (controller *BooksController) ListBooks(c *gin.Context) {
	if sku := strings.TrimSpace(c.Query("sku")); sku != "" {
		book, err := controller.catalog.FindBySKU(sku)
		if err != nil {
			respondServiceError(c, err, nil, "find book by sku")
			return
		}
		c.JSON(http.StatusOK, book)
		return
	}

	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	books, total, err := controller.catalog.ListBooks(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	respondPage(c, books, total, limit, offset, len(books))
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.catalog.GetBook(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, nil, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// AddBook handles POST /api/books
// The body is one raw record in any shape the importers accept.
func (controller *BooksController) AddBook(c *gin.Context) {
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBookBodySize))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil || payload == nil {
		respondBadRequest(c, "request body must be a JSON object")
		return
	}

	book, issues, err := controller.catalog.AddBook(catalog.RecordFromMap(payload))
	if err != nil {
		respondServiceError(c, err, nil, "add book")
		return
	}
	respondCreated(c, AddBookResponse{Book: book, CoercionIssues: issues})
}
