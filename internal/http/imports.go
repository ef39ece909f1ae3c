package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

const (
	maxUploadSize   = 20 * 1024 * 1024 // 20 MB
	uploadFormField = "file"
)

var errUploadTooLarge = fmt.Errorf("file too large (max %d MB)", maxUploadSize/(1024*1024))

type fileImportFunc func(ctx context.Context, content []byte, opts services.ImportOptions) (*services.ImportOutcome, error)

type ImportsController struct {
	importer     ImportRunner
	queue        TaskQueue
	defaultStore woocommerce.Credentials
}

func NewImportsController(importer ImportRunner, queue TaskQueue, defaultStore woocommerce.Credentials) *ImportsController {
	return &ImportsController{
		importer:     importer,
		queue:        queue,
		defaultStore: defaultStore,
	}
}

// WooCommerceImportRequest is the body of POST /api/imports/woocommerce.
// Empty credential fields fall back to the configured store.
type WooCommerceImportRequest struct {
	URL            string `json:"url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

// ImportCSV handles POST /api/imports/csv
// Accepts a multipart upload in the "file" field or the raw request body.
func (ic *ImportsController) ImportCSV(c *gin.Context) {
	ic.importFile(c, ic.importer.ImportCSV)
}

// ImportJSON handles POST /api/imports/json
func (ic *ImportsController) ImportJSON(c *gin.Context) {
	ic.importFile(c, ic.importer.ImportJSON)
}

func (ic *ImportsController) importFile(c *gin.Context, run fileImportFunc) {
	opts, ok := importOptions(c)
	if !ok {
		return
	}

	content, label, err := readUpload(c)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
			return
		}
		respondBadRequest(c, err.Error())
		return
	}
	if opts.Label == "" {
		opts.Label = label
	}

	outcome, err := run(c.Request.Context(), content, opts)
	if err != nil {
		respondServiceError(c, err, sessionOf(outcome), "file import")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ImportWooCommerce handles POST /api/imports/woocommerce
// With ?async=true the import is enqueued and a task ID is returned.
func (ic *ImportsController) ImportWooCommerce(c *gin.Context) {
	opts, ok := importOptions(c)
	if !ok {
		return
	}
	async, ok := parseBoolQuery(c, "async")
	if !ok {
		return
	}

	var req WooCommerceImportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	creds := ic.credentials(req)
	if err := creds.Validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if async != nil && *async {
		ic.enqueue(c, creds, opts)
		return
	}

	outcome, err := ic.importer.ImportWooCommerce(c.Request.Context(), creds, opts)
	if err != nil {
		respondServiceError(c, err, sessionOf(outcome), "woocommerce import")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (ic *ImportsController) enqueue(c *gin.Context, creds woocommerce.Credentials, opts services.ImportOptions) {
	if ic.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled", Code: "tasks_disabled"})
		return
	}

	taskID, err := ic.queue.EnqueueWooCommerceImport(tasks.WooCommerceImportTask{
		URL:            creds.BaseURL,
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		DryRun:         opts.DryRun,
		Strict:         opts.Strict,
		Trigger:        "api",
	})
	if err != nil {
		respondInternalError(c, err, "enqueue woocommerce import")
		return
	}
	respondAccepted(c, "import enqueued", gin.H{"task_id": taskID})
}

func (ic *ImportsController) credentials(req WooCommerceImportRequest) woocommerce.Credentials {
	creds := woocommerce.Credentials{
		BaseURL:        strings.TrimSpace(req.URL),
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
	}
	if creds.BaseURL == "" {
		creds.BaseURL = ic.defaultStore.BaseURL
	}
	if creds.ConsumerKey == "" && creds.ConsumerSecret == "" {
		creds.ConsumerKey = ic.defaultStore.ConsumerKey
		creds.ConsumerSecret = ic.defaultStore.ConsumerSecret
	}
	return creds
}

// ListImports handles GET /api/imports
func (ic *ImportsController) ListImports(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	sessions, total, err := ic.importer.ListImports(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list imports")
		return
	}
	respondPage(c, sessions, total, limit, offset, len(sessions))
}

// GetImport handles GET /api/imports/:id
func (ic *ImportsController) GetImport(c *gin.Context) {
	session, err := ic.importer.GetImport(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, nil, "get import")
		return
	}
	c.JSON(http.StatusOK, session)
}

func importOptions(c *gin.Context) (services.ImportOptions, bool) {
	dryRun, ok := parseBoolQuery(c, "dry_run")
	if !ok {
		return services.ImportOptions{}, false
	}
	strict, ok := parseBoolQuery(c, "strict")
	if !ok {
		return services.ImportOptions{}, false
	}

	opts := services.ImportOptions{Strict: strict, Label: c.Query("label")}
	if dryRun != nil {
		opts.DryRun = *dryRun
	}
	return opts, true
}

// readUpload returns the payload and a label naming it.
func readUpload(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, header, err := c.Request.FormFile(uploadFormField)
		if err != nil {
			return nil, "", fmt.Errorf("%s not provided", uploadFormField)
		}
		defer file.Close()

		if header.Size > maxUploadSize {
			return nil, "", errUploadTooLarge
		}
		content, err := readLimited(file)
		return content, header.Filename, err
	}

	content, err := readLimited(c.Request.Body)
	return content, "", err
}

func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) > maxUploadSize {
		return nil, errUploadTooLarge
	}
	return content, nil
}

func sessionOf(outcome *services.ImportOutcome) any {
	if outcome == nil || outcome.Session == nil {
		return nil
	}
	return outcome.Session
}
