package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"rental-system/internal/repositories"
	"rental-system/internal/workflow"
	apperrors "rental-system/pkg/errors"
	"rental-system/pkg/utils"
)

// ReportController — выгрузка журнала проверок. format=json отдает записи
// как есть, format=xlsx собирает файл для отдела аудита.
type ReportController struct {
	auditRepo repositories.AuditLogRepositoryInterface
	logger    *zap.Logger
}

func NewReportController(auditRepo repositories.AuditLogRepositoryInterface, logger *zap.Logger) *ReportController {
	return &ReportController{auditRepo: auditRepo, logger: logger}
}

func (c *ReportController) GetPermissionLogReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	role, err := utils.GetRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !workflow.HasCapability(role, workflow.CapAll) {
		return utils.ErrorResponse(ctx, apperrors.ErrForbidden, c.logger)
	}

	entries, err := c.auditRepo.GetAll(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if strings.ToLower(ctx.QueryParam("format")) == "xlsx" {
		return c.respondWithXLSX(ctx, entries)
	}
	return utils.SuccessResponse(ctx, entries, "Reporte de accesos", http.StatusOK)
}

var permissionLogHeaders = []string{
	"ID", "Usuario", "Rol", "Acción", "Recurso", "Fecha", "Hora",
	"Permitido", "Motivo", "Dispositivo", "IP",
}

func logRowToSlice(entry workflow.PermissionLogEntry) []interface{} {
	allowed := "No"
	if entry.Allowed {
		allowed = "Sí"
	}
	return []interface{}{
		entry.ID, entry.UserID, string(entry.Role), entry.Action, entry.Resource,
		entry.Timestamp.Format("02.01.2006"), entry.Timestamp.Format("15:04:05"),
		allowed, entry.Reason.String, entry.DeviceType, entry.IP,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, entries []workflow.PermissionLogEntry) error {
	f := excelize.NewFile()
	sheet := "Registro de accesos"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &permissionLogHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for i, entry := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := logRowToSlice(entry)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "C", "E", 22)
	f.SetColWidth(sheet, "I", "I", 50)

	fileName := fmt.Sprintf("permission_log_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
