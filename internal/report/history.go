package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// CSVHeader это заголовок выгрузки продаж.
var CSVHeader = []string{"Product", "Qty", "Amount", "Method", "Staff", "Date"}

// CSVDateLayout это формат даты в выгрузке.
const CSVDateLayout = "2006-01-02 15:04:05"

// SaleFilter задаёт условия выборки истории продаж. Пустые поля не ограничивают выборку.
// From и To задают календарные дни включительно.
type SaleFilter struct {
	Query   string
	Method  model.PaymentMethod
	StaffID string
	From    time.Time
	To      time.Time
}

// FilterTotals это итоги по отфильтрованным продажам.
type FilterTotals struct {
	Amount decimal.Decimal `json:"amount"`
	Momo   decimal.Decimal `json:"momo"`
	Cash   decimal.Decimal `json:"cash"`
}

// Filter выбирает продажи по условиям и возвращает их от новых к старым вместе с итогами.
func Filter(sales []model.Sale, f SaleFilter) ([]model.Sale, FilterTotals) {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	var from, to time.Time
	if !f.From.IsZero() {
		from = StartOfDay(f.From)
	}
	if !f.To.IsZero() {
		to = StartOfDay(f.To).AddDate(0, 0, 1)
	}

	out := filter(sales, func(s model.Sale) bool {
		switch {
		case q != "" && !strings.Contains(strings.ToLower(s.ProductName), q):
			return false
		case f.Method != "" && s.PaymentMethod != f.Method:
			return false
		case f.StaffID != "" && s.SoldByID != f.StaffID:
			return false
		case !from.IsZero() && s.Date.Before(from):
			return false
		case !to.IsZero() && !s.Date.Before(to):
			return false
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b model.Sale) int {
		return b.Date.Compare(a.Date)
	})

	t := FilterTotals{Amount: decimal.Zero, Momo: decimal.Zero, Cash: decimal.Zero}
	for _, s := range out {
		t.Amount = t.Amount.Add(s.Amount)
		switch s.PaymentMethod {
		case model.PaymentMomo:
			t.Momo = t.Momo.Add(s.Amount)
		case model.PaymentCash:
			t.Cash = t.Cash.Add(s.Amount)
		}
	}
	return out, t
}

// WriteCSV выгружает продажи в CSV. Даты выводятся в поясе loc.
func WriteCSV(w io.Writer, sales []model.Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range sales {
		row := []string{
			s.ProductName,
			strconv.Itoa(s.QuantitySold),
			s.Amount.StringFixed(2),
			string(s.PaymentMethod),
			s.SoldBy,
			s.Date.In(loc).Format(CSVDateLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
