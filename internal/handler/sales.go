package handler

import (
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shop-pos/internal/model"
	"github.com/mmeshcher/shop-pos/internal/report"
	"github.com/mmeshcher/shop-pos/internal/shop"
)

const dateLayout = "2006-01-02"

type saleRequest struct {
	ProductID     string              `json:"productId"`
	QuantitySold  int                 `json:"quantitySold"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

// RecordSale записывает продажу от имени текущего пользователя.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req saleRequest
	if !h.decode(w, r, &req) {
		return
	}

	sale, err := h.shop.RecordSale(r.Context(), shop.SaleInput{
		ProductID:     req.ProductID,
		QuantitySold:  req.QuantitySold,
		PaymentMethod: req.PaymentMethod,
		SoldBy:        user,
	})
	if err != nil {
		h.fail(w, "record sale", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sale)
}

// MySales возвращает сводку продаж текущего пользователя за сегодня.
func (h *Handler) MySales(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, report.UserDay(h.shop.Sales(), user.ID, h.now()))
}

type salesResponse struct {
	Sales  []model.Sale        `json:"sales"`
	Totals report.FilterTotals `json:"totals"`
}

// ListSales возвращает историю продаж с фильтрами q, method, staffId, from и to.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	f, ok := h.saleFilter(w, r.URL.Query())
	if !ok {
		return
	}

	sales, totals := report.Filter(h.shop.Sales(), f)
	h.writeJSON(w, http.StatusOK, salesResponse{Sales: sales, Totals: totals})
}

// ExportSales выгружает продажи в CSV с теми же фильтрами, что и ListSales.
func (h *Handler) ExportSales(w http.ResponseWriter, r *http.Request) {
	f, ok := h.saleFilter(w, r.URL.Query())
	if !ok {
		return
	}

	sales, _ := report.Filter(h.shop.Sales(), f)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, sales, h.now().Location()); err != nil {
		h.logger.Error("export sales error", zap.Error(err))
	}
}

func (h *Handler) saleFilter(w http.ResponseWriter, q url.Values) (report.SaleFilter, bool) {
	f := report.SaleFilter{
		Query:   q.Get("q"),
		Method:  model.PaymentMethod(q.Get("method")),
		StaffID: q.Get("staffId"),
	}
	if f.Method == "all" {
		f.Method = ""
	}
	if f.StaffID == "all" {
		f.StaffID = ""
	}
	if f.Method != "" && !f.Method.Valid() {
		h.writeError(w, http.StatusBadRequest, "Payment method must be cash or momo.")
		return f, false
	}

	loc := h.now().Location()
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Dates must be in YYYY-MM-DD format.")
			return f, false
		}
		*p.dst = t
	}
	return f, true
}

// Dashboard возвращает показатели панели администратора.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.shop.Snapshot()
	h.writeJSON(w, http.StatusOK, report.BuildDashboard(snap.Products, snap.Sales, snap.Users, h.now()))
}
