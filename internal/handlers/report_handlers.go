package handlers

import (
	"log/slog"
	"net/http"

	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers exposes the daily CSV sales reports
type ReportHandlers struct {
	reports services.ReportService
	log     *slog.Logger
}

func NewReportHandlers(reports services.ReportService, log *slog.Logger) *ReportHandlers {
	return &ReportHandlers{reports: reports, log: log}
}

// GetReport handles GET /v1/reports/:date and returns a short-lived download URL.
//
//	@Summary	Daily report download link
//	@Tags		reports
//	@Security	BearerAuth
//	@Produce	json
//	@Param		date	path		string	true	"Day (YYYY-MM-DD)"
//	@Success	200		{object}	map[string]string
//	@Failure	404		{object}	common.ErrorResponse
//	@Router		/reports/{date} [get]
func (h *ReportHandlers) GetReport(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c.Param("date"), "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	url, err := h.reports.URL(c.Request().Context(), restaurantID, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"date": day.Format("2006-01-02"),
		"url":  url,
	})
}

// ExportReport handles POST /v1/reports/:date, regenerating the report on demand.
func (h *ReportHandlers) ExportReport(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c.Param("date"), "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	object, err := h.reports.Export(c.Request().Context(), restaurantID, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"date":   day.Format("2006-01-02"),
		"object": object,
	})
}

// DownloadReport handles GET /v1/reports/:date/csv, streaming a freshly built report.
func (h *ReportHandlers) DownloadReport(c echo.Context) error {
	restaurantID, err := actingRestaurant(c)
	if err != nil {
		return err
	}
	day, err := parseDay(c.Param("date"), "date")
	if err != nil {
		return respondError(c, h.log, err)
	}
	data, err := h.reports.Build(c.Request().Context(), restaurantID, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders-`+day.Format("2006-01-02")+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
