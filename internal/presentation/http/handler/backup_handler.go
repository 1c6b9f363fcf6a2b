package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipts-api/pkg/apperror"
)

// maxBackupSize caps an uploaded backup file
const maxBackupSize = 50 << 20

// BackupHandler handles ledger export and import
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export downloads every receipt as a JSON backup
// @Summary Export backup
// @Tags backup
// @Security BearerAuth
// @Produce json
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("receipts_backup_%s.json", time.Now().UTC().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Import restores receipts from an uploaded backup file
// @Summary Import backup
// @Tags backup
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Backup .json file"
// @Param skip_existing formData bool false "Skip receipts whose number exists (default true)"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A backup file is required in field \"file\"")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".json") {
		response.BadRequest(c, "File must be a .json backup")
		return
	}
	if fileHeader.Size > maxBackupSize {
		response.BadRequest(c, "Backup file is too large")
		return
	}

	skipExisting, err := skipExistingParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBackupSize))
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}

	records, err := decodeBackup(data)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := h.backupService.ImportRaw(c.Request.Context(), records, skipExisting)
	response.OK(c, result.Message, result)
}

// skipExistingParam reads skip_existing from the form or the query, default true
func skipExistingParam(c *gin.Context) (bool, error) {
	raw := c.PostForm("skip_existing")
	if raw == "" {
		raw = c.Query("skip_existing")
	}
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.NewBadRequestError("skip_existing must be true or false")
	}
	return v, nil
}

// decodeBackup checks the document shape and returns the receipt records
// undecoded so one bad record cannot reject the whole file.
func decodeBackup(data []byte) ([]json.RawMessage, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, apperror.NewBadRequestError("Invalid JSON file")
	}
	raw, ok := keys["receipts"]
	if !ok {
		return nil, apperror.NewBadRequestError("Invalid backup format: missing \"receipts\"")
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, apperror.NewBadRequestError("Invalid backup format: \"receipts\" must be a list")
	}
	return records, nil
}
