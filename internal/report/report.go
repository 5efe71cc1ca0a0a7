// Package report строит отчёты по журналу продаж. Все функции чистые: они не меняют
// входные данные и зависят только от аргументов. Календарные дни считаются в часовом
// поясе переданного now.
package report

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// TopProductsLimit это число позиций в рейтинге товаров.
const TopProductsLimit = 5

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.RequireFromString("0.5")
)

// Totals это выручка за календарные окна.
type Totals struct {
	Today   decimal.Decimal `json:"today"`
	Week    decimal.Decimal `json:"week"`
	Month   decimal.Decimal `json:"month"`
	AllTime decimal.Decimal `json:"allTime"`
}

// DayRevenue это выручка за один день.
type DayRevenue struct {
	Date    time.Time       `json:"date"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StaffStat это продажи продавца за сегодня.
type StaffStat struct {
	UserID   string          `json:"userId"`
	Name     string          `json:"name"`
	FullName string          `json:"fullName"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// ProductRank это суммарные продажи товара за всё время.
type ProductRank struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Split это разбивка сегодняшней выручки по способам оплаты.
type Split struct {
	Cash        decimal.Decimal `json:"cash"`
	Momo        decimal.Decimal `json:"momo"`
	Total       decimal.Decimal `json:"total"`
	CashPercent int             `json:"cashPercent"`
	MomoPercent int             `json:"momoPercent"`
}

// Direction это направление изменения выручки.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Trend сравнивает сегодняшнюю выручку со вчерашней. Percent всегда неотрицателен.
type Trend struct {
	Direction Direction `json:"direction"`
	Percent   int       `json:"percent"`
}

// StartOfDay возвращает полночь календарного дня t в его часовом поясе.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay сообщает, приходится ли a на тот же календарный день, что и ref, в поясе ref.
func SameDay(a, ref time.Time) bool {
	ay, am, ad := a.In(ref.Location()).Date()
	ry, rm, rd := ref.Date()
	return ay == ry && am == rm && ad == rd
}

// Today возвращает продажи текущего календарного дня в порядке журнала.
func Today(sales []model.Sale, now time.Time) []model.Sale {
	return filter(sales, func(s model.Sale) bool { return SameDay(s.Date, now) })
}

// Windows считает выручку за сегодня, за неделю (с полуночи шесть дней назад),
// за месяц (с первого числа) и за всё время.
func Windows(sales []model.Sale, now time.Time) Totals {
	today := StartOfDay(now)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	t := Totals{Today: decimal.Zero, Week: decimal.Zero, Month: decimal.Zero, AllTime: decimal.Zero}
	for _, s := range sales {
		t.AllTime = t.AllTime.Add(s.Amount)
		if SameDay(s.Date, now) {
			t.Today = t.Today.Add(s.Amount)
		}
		if !s.Date.Before(weekStart) {
			t.Week = t.Week.Add(s.Amount)
		}
		if !s.Date.Before(monthStart) {
			t.Month = t.Month.Add(s.Amount)
		}
	}
	return t
}

// DailyRevenue возвращает выручку за последние семь дней, от старого к новому.
func DailyRevenue(sales []model.Sale, now time.Time) []DayRevenue {
	today := StartOfDay(now)
	out := make([]DayRevenue, 7)
	for i := range out {
		day := today.AddDate(0, 0, i-6)
		next := day.AddDate(0, 0, 1)
		total := decimal.Zero
		for _, s := range sales {
			if !s.Date.Before(day) && s.Date.Before(next) {
				total = total.Add(s.Amount)
			}
		}
		out[i] = DayRevenue{Date: day, Label: day.Weekday().String()[:3], Revenue: total}
	}
	return out
}

// StaffStats возвращает сегодняшние продажи каждого продавца, по убыванию выручки.
// Администраторы не учитываются.
func StaffStats(sales []model.Sale, users []model.User, now time.Time) []StaffStat {
	today := Today(sales, now)

	out := make([]StaffStat, 0, len(users))
	for _, u := range users {
		if u.Role != model.RoleStaff {
			continue
		}
		st := StaffStat{UserID: u.ID, Name: firstName(u.Name), FullName: u.Name, Total: decimal.Zero}
		for _, s := range today {
			if s.SoldByID == u.ID {
				st.Total = st.Total.Add(s.Amount)
				st.Count++
			}
		}
		out = append(out, st)
	}

	slices.SortStableFunc(out, func(a, b StaffStat) int {
		return b.Total.Cmp(a.Total)
	})
	return out
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// TopProducts возвращает limit товаров с наибольшей выручкой за всё время.
// Имя берётся из первой продажи товара.
func TopProducts(sales []model.Sale, limit int) []ProductRank {
	index := make(map[string]int)
	ranks := make([]ProductRank, 0)
	for _, s := range sales {
		i, ok := index[s.ProductID]
		if !ok {
			i = len(ranks)
			index[s.ProductID] = i
			ranks = append(ranks, ProductRank{ProductID: s.ProductID, Name: s.ProductName, Revenue: decimal.Zero})
		}
		ranks[i].Quantity += s.QuantitySold
		ranks[i].Revenue = ranks[i].Revenue.Add(s.Amount)
	}

	slices.SortStableFunc(ranks, func(a, b ProductRank) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	if limit >= 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// PaymentSplit делит сегодняшнюю выручку на наличные и мобильные деньги.
// Проценты в сумме дают 100; при нулевой выручке оба равны 0.
func PaymentSplit(sales []model.Sale, now time.Time) Split {
	sp := Split{Cash: decimal.Zero, Momo: decimal.Zero, Total: decimal.Zero}
	for _, s := range Today(sales, now) {
		sp.Total = sp.Total.Add(s.Amount)
		switch s.PaymentMethod {
		case model.PaymentCash:
			sp.Cash = sp.Cash.Add(s.Amount)
		case model.PaymentMomo:
			sp.Momo = sp.Momo.Add(s.Amount)
		}
	}
	if sp.Total.IsZero() {
		return sp
	}
	sp.MomoPercent = int(roundHalfUp(sp.Momo.Div(sp.Total).Mul(hundred)))
	sp.CashPercent = 100 - sp.MomoPercent
	return sp
}

// TrendOf сравнивает выручку сегодня и вчера. Возвращает nil, если вчера продаж не было.
func TrendOf(sales []model.Sale, now time.Time) *Trend {
	yesterday := StartOfDay(now).AddDate(0, 0, -1)
	yTotal, tTotal := decimal.Zero, decimal.Zero
	for _, s := range sales {
		switch {
		case SameDay(s.Date, yesterday):
			yTotal = yTotal.Add(s.Amount)
		case SameDay(s.Date, now):
			tTotal = tTotal.Add(s.Amount)
		}
	}
	if yTotal.IsZero() {
		return nil
	}

	pct := roundHalfUp(tTotal.Sub(yTotal).Div(yTotal).Mul(hundred))
	tr := &Trend{Direction: DirectionFlat, Percent: int(pct)}
	switch {
	case pct > 0:
		tr.Direction = DirectionUp
	case pct < 0:
		tr.Direction = DirectionDown
		tr.Percent = int(-pct)
	}
	return tr
}

// roundHalfUp округляет до целого, половину в сторону плюс бесконечности.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

func filter(sales []model.Sale, keep func(model.Sale) bool) []model.Sale {
	out := make([]model.Sale, 0)
	for _, s := range sales {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
