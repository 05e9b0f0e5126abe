// Package handler はdividendsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"dividend_dashboard/internal/feature/dividends/domain"
	"dividend_dashboard/internal/feature/dividends/transport/http/dto"
	"dividend_dashboard/internal/feature/dividends/usecase"
)

const (
	// PageTitle is the heading of the dashboard page.
	PageTitle = "Dividend Dashboard"
	dayLayout = "2006-01-02"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// errBadDate marks an unparsable start or end query parameter.
var errBadDate = errors.New("invalid date, want YYYY-MM-DD")

// DashboardUsecase は配当ダッシュボードのユースケースインターフェースを定義します。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type DashboardUsecase interface {
	Dashboard(ctx context.Context, sel usecase.Selection) (usecase.View, error)
}

// DashboardHandler はダッシュボードのHTTPリクエストを処理します。
type DashboardHandler struct {
	uc   DashboardUsecase
	tmpl *template.Template
}

// NewDashboardHandler は指定されたusecaseでDashboardHandlerの新しいインスタンスを生成します。
func NewDashboardHandler(uc DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{uc: uc, tmpl: parseTemplates()}
}

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"day": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(dayLayout)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// pageData is the model passed to dashboard.tmpl.
type pageData struct {
	Title string
	View  usecase.View
}

// errorData is the model passed to error.tmpl.
type errorData struct {
	Title   string
	Status  int
	Message string
}

// Page はダッシュボードのHTMLページを返します。
//
// エンドポイント例:
// GET /?ticker=AAPL&start=2023-01-01&end=2023-12-31
func (h *DashboardHandler) Page(c *gin.Context) {
	view, status, err := h.view(c)
	if err != nil {
		c.Render(status, render.HTML{
			Template: h.tmpl,
			Name:     "error.tmpl",
			Data:     errorData{Title: PageTitle, Status: status, Message: err.Error()},
		})
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: h.tmpl,
		Name:     "dashboard.tmpl",
		Data:     pageData{Title: PageTitle, View: view},
	})
}

// API は同じビューをJSONで返します。
//
// エンドポイント例:
// GET /api/dividends?ticker=AAPL&start=2023-01-01&end=2023-12-31
func (h *DashboardHandler) API(c *gin.Context) {
	view, status, err := h.view(c)
	if err != nil {
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(view))
}

// view parses the selection from the query and renders it, returning the
// HTTP status to use on failure.
func (h *DashboardHandler) view(c *gin.Context) (usecase.View, int, error) {
	sel, err := parseSelection(c)
	if err != nil {
		return usecase.View{}, http.StatusBadRequest, err
	}

	view, err := h.uc.Dashboard(c.Request.Context(), sel)
	switch {
	case err == nil:
		return view, http.StatusOK, nil
	case errors.Is(err, domain.ErrUnknownTicker), errors.Is(err, domain.ErrInvalidRange):
		return usecase.View{}, http.StatusBadRequest, err
	default:
		zap.L().Error("failed to render dashboard", zap.Error(err))
		return usecase.View{}, http.StatusBadGateway, err
	}
}

func parseSelection(c *gin.Context) (usecase.Selection, error) {
	sel := usecase.Selection{Ticker: c.Query("ticker")}

	var err error
	if sel.Start, err = parseDay(c.Query("start")); err != nil {
		return usecase.Selection{}, fmt.Errorf("start: %w", err)
	}
	if sel.End, err = parseDay(c.Query("end")); err != nil {
		return usecase.Selection{}, fmt.Errorf("end: %w", err)
	}
	return sel, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errBadDate, s)
	}
	return t, nil
}

func toResponse(v usecase.View) dto.DashboardResponse {
	if v.Empty {
		return dto.DashboardResponse{Empty: true, Warning: v.Warning, Tickers: []string{}}
	}
	return dto.DashboardResponse{
		Tickers: v.Tickers,
		Ticker:  v.Ticker,
		MinDate: v.MinDate.Format(dayLayout),
		MaxDate: v.MaxDate.Format(dayLayout),
		Start:   v.Start.Format(dayLayout),
		End:     v.End.Format(dayLayout),
		Chart:   &dto.ChartResponse{Title: v.Chart.Title, X: v.Chart.X, Y: v.Chart.Y},
		Table:   &dto.TableResponse{Columns: v.Table.Columns, Rows: v.Table.Rows},
	}
}
