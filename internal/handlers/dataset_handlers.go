package handlers

import (
	"errors"
	"net/http"

	"visionm/internal/common"
	"visionm/internal/services"

	"github.com/labstack/echo/v4"
)

// DatasetHandlers exposes dataset upload and the status endpoint the client
// polls until processing reaches a terminal state.
type DatasetHandlers struct {
	datasetService services.DatasetService

	// maxUploadBytes caps a single multipart upload
	maxUploadBytes int64
}

func NewDatasetHandlers(datasetService services.DatasetService, maxUploadBytes int64) *DatasetHandlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 512 << 20
	}
	return &DatasetHandlers{
		datasetService: datasetService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload handles POST /v1/datasets. Multipart form: project_id, version, and
// one or more files under "files". Responds as soon as the dataset row exists;
// the caller polls Status for the outcome.
func (h *DatasetHandlers) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendForbiddenError(c, "You must belong to a company to upload datasets")
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes)

	projectID, err := common.ValidateUUID(c.FormValue("project_id"), "project_id")
	if err != nil {
		return common.SendValidationError(c, "project_id", err.Error())
	}
	version := c.FormValue("version")
	if err := common.ValidateRequiredString(version, "version"); err != nil {
		return common.SendValidationError(c, "version", err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return common.SendValidationError(c, "files", "Invalid multipart form")
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return common.SendValidationError(c, "files", "At least one file is required")
	}

	files := make([]services.UploadFile, 0, len(fileHeaders))
	closers := make([]func() error, 0, len(fileHeaders))
	defer func() {
		for _, closeFn := range closers {
			_ = closeFn()
		}
	}()
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			return common.SendValidationError(c, "files", "Failed to read uploaded file")
		}
		closers = append(closers, src.Close)
		files = append(files, services.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      src,
		})
	}

	dataset, err := h.datasetService.Upload(ctx, companyID, projectID, version, files)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Project")
		}
		return common.SendServerError(c, "Failed to upload dataset")
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"dataset_id": dataset.ID,
		"status":     dataset.Status,
	})
}

// Status handles GET /v1/datasets/:id/status
func (h *DatasetHandlers) Status(c echo.Context) error {
	ctx := c.Request().Context()

	datasetID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	dataset, err := h.datasetService.GetStatus(ctx, datasetID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Dataset")
		}
		return common.SendServerError(c, "Failed to fetch dataset status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dataset_id":    dataset.ID,
		"status":        dataset.Status,
		"total_images":  dataset.TotalImages,
		"size_bytes":    dataset.SizeBytes,
		"error_message": dataset.ErrorMessage,
	})
}

// ListByProject handles GET /v1/projects/:id/datasets
func (h *DatasetHandlers) ListByProject(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetCompanyIDFromContext(ctx); !ok {
		return common.SendForbiddenError(c, "You must belong to a company")
	}
	projectID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	limit, offset := parsePagination(c)
	datasets, err := h.datasetService.ListByProject(ctx, projectID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list datasets")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// ListFiles handles GET /v1/datasets/:id/files
func (h *DatasetHandlers) ListFiles(c echo.Context) error {
	ctx := c.Request().Context()

	datasetID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	files, err := h.datasetService.ListFiles(ctx, datasetID)
	if err != nil {
		return common.SendServerError(c, "Failed to list dataset files")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}
