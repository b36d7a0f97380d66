package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

const dateLayout = "2006-01-02"

// ReportHandler serves the daily report routes.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type createReportRequest struct {
	ReportDate string   `json:"report_date" validate:"omitempty,datetime=2006-01-02"`
	Summary    string   `json:"summary" validate:"required,max=2000"`
	Tasks      []string `json:"tasks" validate:"max=50"`
	Blockers   string   `json:"blockers" validate:"max=2000"`
	HoursSpent float64  `json:"hours_spent" validate:"gte=0,lte=24"`
}

type reportPageResponse struct {
	Reports []*domain.Report `json:"reports"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// Create files a daily report for the caller.
//
// @Summary      Create daily report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body  body      createReportRequest  true  "Report"
// @Success      201   {object}  domain.Report
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	author, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req createReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var date time.Time
	if req.ReportDate != "" {
		date, _ = time.Parse(dateLayout, req.ReportDate)
	}

	report, err := h.service.Create(c.Request().Context(), author, ports.CreateReportInput{
		ReportDate: date,
		Summary:    req.Summary,
		Tasks:      req.Tasks,
		Blockers:   req.Blockers,
		HoursSpent: req.HoursSpent,
	})
	if err != nil {
		return err
	}
	metrics.ReportsCreatedTotal.WithLabelValues(string(author.Role)).Inc()
	return c.JSON(http.StatusCreated, report)
}

// ListMine lists the caller's own reports.
//
// @Summary      List own reports
// @Tags         reports
// @Produce      json
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Param        from   query     string  false  "Earliest report date (YYYY-MM-DD)"
// @Param        to     query     string  false  "Latest report date (YYYY-MM-DD)"
// @Success      200    {object}  reportPageResponse
// @Failure      401    {object}  map[string]string
// @Router       /v1/reports/mine [get]
func (h *ReportHandler) ListMine(c echo.Context) error {
	id, err := callerIdentity(c)
	if err != nil {
		return err
	}
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	filter.UserID = id.UserID
	return h.list(c, filter)
}

// ListAll lists reports of every user. Managers and admins only.
//
// @Summary      List all reports
// @Tags         reports
// @Produce      json
// @Param        user_id  query     int     false  "Restrict to one author"
// @Param        page     query     int     false  "Page (1-based)"
// @Param        limit    query     int     false  "Page size (max 100)"
// @Param        from     query     string  false  "Earliest report date (YYYY-MM-DD)"
// @Param        to       query     string  false  "Latest report date (YYYY-MM-DD)"
// @Success      200      {object}  reportPageResponse
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /v1/reports [get]
func (h *ReportHandler) ListAll(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "user_id must be a positive integer")
		}
		filter.UserID = userID
	}
	return h.list(c, filter)
}

func (h *ReportHandler) list(c echo.Context, filter ports.ListReportsFilter) error {
	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportPageResponse{
		Reports: page.Reports,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
	})
}

func listFilter(c echo.Context) (ports.ListReportsFilter, error) {
	var f ports.ListReportsFilter
	err := echo.QueryParamsBinder(c).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		Time("from", &f.DateFrom, dateLayout).
		Time("to", &f.DateTo, dateLayout).
		BindError()
	if err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}
