package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// RecentLimit это число последних продаж дня на панели.
const RecentLimit = 8

// Dashboard собирает все показатели панели администратора.
type Dashboard struct {
	Totals       Totals              `json:"totals"`
	Split        Split               `json:"split"`
	Trend        *Trend              `json:"trend"`
	TodayCount   int                 `json:"todayCount"`
	DailyRevenue []DayRevenue        `json:"dailyRevenue"`
	StaffStats   []StaffStat         `json:"staffStats"`
	TopProducts  []ProductRank       `json:"topProducts"`
	LowStock     []model.ProductView `json:"lowStock"`
	Recent       []model.Sale        `json:"recent"`
}

// BuildDashboard строит панель по текущему состоянию магазина.
func BuildDashboard(products []model.Product, sales []model.Sale, users []model.User, now time.Time) Dashboard {
	today := Today(sales, now)

	recent := slices.Clone(today)
	slices.Reverse(recent)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}

	low := make([]model.ProductView, 0)
	for _, p := range products {
		if p.Status() != model.StockStatusInStock {
			low = append(low, p.View())
		}
	}

	return Dashboard{
		Totals:       Windows(sales, now),
		Split:        PaymentSplit(sales, now),
		Trend:        TrendOf(sales, now),
		TodayCount:   len(today),
		DailyRevenue: DailyRevenue(sales, now),
		StaffStats:   StaffStats(sales, users, now),
		TopProducts:  TopProducts(sales, TopProductsLimit),
		LowStock:     low,
		Recent:       recent,
	}
}

// Day это сегодняшние продажи одного продавца.
type Day struct {
	Total decimal.Decimal `json:"total"`
	Momo  decimal.Decimal `json:"momo"`
	Cash  decimal.Decimal `json:"cash"`
	Count int             `json:"count"`
	Sales []model.Sale    `json:"sales"`
}

// UserDay возвращает сводку продаж пользователя за сегодня, новые продажи первыми.
func UserDay(sales []model.Sale, userID string, now time.Time) Day {
	mine := filter(sales, func(s model.Sale) bool {
		return s.SoldByID == userID && SameDay(s.Date, now)
	})
	slices.Reverse(mine)

	d := Day{Total: decimal.Zero, Momo: decimal.Zero, Cash: decimal.Zero, Count: len(mine), Sales: mine}
	for _, s := range mine {
		d.Total = d.Total.Add(s.Amount)
		switch s.PaymentMethod {
		case model.PaymentMomo:
			d.Momo = d.Momo.Add(s.Amount)
		case model.PaymentCash:
			d.Cash = d.Cash.Add(s.Amount)
		}
	}
	return d
}
