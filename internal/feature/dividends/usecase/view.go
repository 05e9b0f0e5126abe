package usecase

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"dividend_dashboard/internal/feature/dividends/domain"
	"dividend_dashboard/internal/feature/dividends/domain/entity"
)

const (
	// NoDataWarning is shown instead of the dashboard when the dataset is empty.
	NoDataWarning = "No data found."
	// ChartTitle is the title of the dividend bar chart.
	ChartTitle = "Dividend history"

	dayLayout       = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Fixed leading table columns. Passthrough fields follow them.
var baseColumns = []string{"ticker", "date", "amount"}

// Selection is the user's choice of ticker and date range.
// Zero values mean "use the default": the first ticker and the full date span
// of the selected ticker.
type Selection struct {
	Ticker string
	Start  time.Time
	End    time.Time
}

// Chart describes a bar chart with one bar per dividend record.
type Chart struct {
	Title string    `json:"title"`
	X     []string  `json:"x"`
	Y     []float64 `json:"y"`
}

// Table is the tabular rendering of the filtered records.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// View is the result of rendering the dashboard for one selection.
type View struct {
	Empty   bool
	Warning string

	Tickers []string
	Ticker  string

	// MinDate and MaxDate bound the dates of the selected ticker.
	MinDate time.Time
	MaxDate time.Time
	// Start and End are the effective, inclusive filter bounds.
	Start time.Time
	End   time.Time

	Records []entity.Dividend
	Chart   Chart
	Table   Table
}

// Render derives the dashboard view from a dataset and a selection.
// It never mutates ds.
func Render(ds []entity.Dividend, sel Selection) (View, error) {
	if len(ds) == 0 {
		return View{Empty: true, Warning: NoDataWarning}, nil
	}

	sorted := SortByDateDesc(ds)
	tickers := Tickers(sorted)

	ticker := sel.Ticker
	if ticker == "" {
		ticker = tickers[0]
	} else if !slices.Contains(tickers, ticker) {
		return View{}, fmt.Errorf("%w: %q", domain.ErrUnknownTicker, ticker)
	}

	subset := Filter(sorted, ticker, time.Time{}, time.Time{})
	minDate, maxDate := DateBounds(subset)

	start, end := minDate, maxDate
	if !sel.Start.IsZero() {
		start = entity.TruncateDay(sel.Start)
	}
	if !sel.End.IsZero() {
		end = entity.TruncateDay(sel.End)
	}
	if start.After(end) {
		return View{}, fmt.Errorf("%w: %s > %s", domain.ErrInvalidRange, start.Format(dayLayout), end.Format(dayLayout))
	}

	filtered := Filter(subset, ticker, start, end)

	return View{
		Tickers: tickers,
		Ticker:  ticker,
		MinDate: minDate,
		MaxDate: maxDate,
		Start:   start,
		End:     end,
		Records: filtered,
		Chart:   BuildChart(filtered),
		Table:   BuildTable(Columns(sorted), filtered),
	}, nil
}

// SortByDateDesc returns a copy of ds ordered by date, newest first.
// Records sharing a date keep their relative order.
func SortByDateDesc(ds []entity.Dividend) []entity.Dividend {
	out := make([]entity.Dividend, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Tickers returns the distinct tickers of ds in first-encountered order.
func Tickers(ds []entity.Dividend) []string {
	seen := make(map[string]struct{}, len(ds))
	out := make([]string, 0)
	for _, d := range ds {
		if _, ok := seen[d.Ticker]; ok {
			continue
		}
		seen[d.Ticker] = struct{}{}
		out = append(out, d.Ticker)
	}
	return out
}

// Filter returns the records of ds for ticker whose calendar day lies in
// [start, end]. A zero start or end leaves that side open.
func Filter(ds []entity.Dividend, ticker string, start, end time.Time) []entity.Dividend {
	out := make([]entity.Dividend, 0, len(ds))
	for _, d := range ds {
		if d.Ticker != ticker {
			continue
		}
		day := d.Day()
		if !start.IsZero() && day.Before(entity.TruncateDay(start)) {
			continue
		}
		if !end.IsZero() && day.After(entity.TruncateDay(end)) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// DateBounds returns the earliest and latest calendar day in ds.
// Both are zero when ds is empty.
func DateBounds(ds []entity.Dividend) (time.Time, time.Time) {
	var lo, hi time.Time
	for i, d := range ds {
		day := d.Day()
		if i == 0 || day.Before(lo) {
			lo = day
		}
		if i == 0 || day.After(hi) {
			hi = day
		}
	}
	return lo, hi
}

// BuildChart renders one bar per record. Records sharing a date become
// adjacent bars; amounts are not summed.
func BuildChart(ds []entity.Dividend) Chart {
	c := Chart{
		Title: ChartTitle,
		X:     make([]string, 0, len(ds)),
		Y:     make([]float64, 0, len(ds)),
	}
	for _, d := range ds {
		c.X = append(c.X, FormatDate(d.Date))
		c.Y = append(c.Y, d.Amount.InexactFloat64())
	}
	return c
}

// Columns lists the table columns for ds: the fixed columns followed by
// passthrough fields in first-seen order.
func Columns(ds []entity.Dividend) []string {
	cols := append([]string(nil), baseColumns...)
	seen := map[string]struct{}{}
	for _, c := range baseColumns {
		seen[c] = struct{}{}
	}
	for _, d := range ds {
		// map order is random; sort keys within a record for a stable layout
		keys := make([]string, 0, len(d.Extra))
		for k := range d.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// BuildTable renders ds as string cells under columns. Missing fields are blank.
func BuildTable(columns []string, ds []entity.Dividend) Table {
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		row := make([]string, len(columns))
		for i, col := range columns {
			switch col {
			case "ticker":
				row[i] = d.Ticker
			case "date":
				row[i] = FormatDate(d.Date)
			case "amount":
				row[i] = d.Amount.String()
			default:
				row[i] = formatCell(d.Extra[col])
			}
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

// FormatDate prints a date without its clock part when it falls on midnight.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dayLayout)
	}
	return t.Format(timestampLayout)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
