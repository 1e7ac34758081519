package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/services"
	"github.com/itwoqa/bugtracker/pkg/logger"
	"github.com/itwoqa/bugtracker/pkg/response"
)

type ExportHandler struct {
	export *services.ExportService
}

func NewExportHandler(export *services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// ExportExcel streams the full bug list as an XLSX download
// GET /api/export/excel
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	f, err := h.export.BuildWorkbook()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.export.Filename()))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		logger.Error().Err(err).Msg("Failed to stream export")
	}
}
