// internal/handlers/upload/upload_handler.go
package upload

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arrears-service/internal/pkg/response"
	"arrears-service/internal/pkg/spreadsheet"
	"arrears-service/internal/service/importer"
)

// templateHeaders is the canonical header row for the downloadable template.
var templateHeaders = []string{
	"Account Number", "Customer Name", "Contact Number", "Region", "RTOM",
	"Product Label", "Medium", "Latest Bill Amount", "New Arrears",
	"Amount Overdue", "Days Overdue", "Credit Score", "Credit Class Name",
}

type UploadHandler struct {
	importerService *importer.Service
	maxUploadBytes  int64
	logger          *zap.Logger
}

func NewUploadHandler(importerService *importer.Service, maxUploadBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		importerService: importerService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// Parse maps the uploaded sheet without writing anything; used for previews.
func (h *UploadHandler) Parse(c *gin.Context) {
	table, ok := h.readTable(c)
	if !ok {
		return
	}

	candidates := h.importerService.Preview(table)
	response.Success(c, http.StatusOK, "file parsed", gin.H{
		"customers": candidates,
		"count":     len(candidates),
	})
}

// ParseAndImport imports new customers from the uploaded sheet.
func (h *UploadHandler) ParseAndImport(c *gin.Context) {
	table, ok := h.readTable(c)
	if !ok {
		return
	}

	result, err := h.importerService.BulkImport(c.Request.Context(), table)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "import failed", err)
		return
	}

	response.Success(c, http.StatusOK, "import finished", result)
}

// ImportArrears reconciles existing customers against a fresh arrears sheet.
func (h *UploadHandler) ImportArrears(c *gin.Context) {
	table, ok := h.readTable(c)
	if !ok {
		return
	}

	result, err := h.importerService.ReconcileArrears(c.Request.Context(), table)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "arrears import failed", err)
		return
	}

	response.Success(c, http.StatusOK, "arrears reconciled", result)
}

// MarkPaid settles accounts listed in a payment sheet.
func (h *UploadHandler) MarkPaid(c *gin.Context) {
	table, ok := h.readTable(c)
	if !ok {
		return
	}

	result, err := h.importerService.MarkPaid(c.Request.Context(), table)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "mark paid failed", err)
		return
	}

	response.Success(c, http.StatusOK, "accounts settled", result)
}

// Template serves a styled xlsx with the canonical header row.
func (h *UploadHandler) Template(c *gin.Context) {
	data, err := spreadsheet.GenerateTemplate("Customers", templateHeaders)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate template", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="customer_import_template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// readTable pulls the multipart "file" field and parses it into a table.
// A parse failure is fatal for the whole request.
func (h *UploadHandler) readTable(c *gin.Context) (*spreadsheet.Table, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file is required", err)
		return nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open uploaded file", err)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to read uploaded file", err)
		return nil, false
	}

	table, err := spreadsheet.Parse(fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupported) {
			response.Error(c, http.StatusBadRequest, "unsupported file type", err)
			return nil, false
		}
		h.logger.Warn("spreadsheet parse failed",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		response.Error(c, http.StatusBadRequest, "failed to parse file", err)
		return nil, false
	}

	return table, true
}
