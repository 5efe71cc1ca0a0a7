package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/shop-pos/internal/model"
)

// Среда, 4 марта 2026.
var now = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2026, month, day, hour, 0, 0, 0, time.UTC)
}

func sale(id, productID, name string, qty int, amount string, method model.PaymentMethod, soldByID, soldBy string, date time.Time) model.Sale {
	return model.Sale{
		ID:            id,
		ProductID:     productID,
		ProductName:   name,
		QuantitySold:  qty,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: method,
		SoldByID:      soldByID,
		SoldBy:        soldBy,
		Date:          date,
	}
}

func fixture() []model.Sale {
	return []model.Sale{
		sale("s1", "p1", "Cola", 3, "15", model.PaymentCash, "u1", "Kofi Mensah", at(time.March, 4, 10)),
		sale("s2", "p2", "Bread", 2, "5", model.PaymentMomo, "u2", "Ama Owusu", at(time.March, 4, 11)),
		sale("s3", "p1", "Cola", 2, "10", model.PaymentCash, "u1", "Kofi Mensah", at(time.March, 3, 9)),
		sale("s4", "p3", "Rice", 1, "20", model.PaymentMomo, "u1", "Kofi Mensah", at(time.February, 27, 12)),
		sale("s5", "p2", "Bread", 40, "100", model.PaymentCash, "u2", "Ama Owusu", at(time.February, 20, 12)),
		sale("s6", "p4", "Gum", 1, "1", model.PaymentCash, "u2", "Ama Owusu", at(time.February, 26, 0)),
	}
}

func users() []model.User {
	return []model.User{
		{ID: "admin", Name: "Administrator", Username: "admin", Role: model.RoleAdmin},
		{ID: "u3", Name: "Yaw", Username: "yaw", Role: model.RoleStaff},
		{ID: "u2", Name: "Ama Owusu", Username: "ama", Role: model.RoleStaff},
		{ID: "u1", Name: "Kofi Mensah", Username: "kofi", Role: model.RoleStaff},
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestWindows(t *testing.T) {
	tot := Windows(fixture(), now)
	assertDec(t, "20", tot.Today)
	assertDec(t, "51", tot.Week)
	assertDec(t, "30", tot.Month)
	assertDec(t, "151", tot.AllTime)

	empty := Windows(nil, now)
	assertDec(t, "0", empty.AllTime)
}

func TestWindows_CalendarInLocation(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	local := now.In(zone)
	// 22:30 UTC 3 марта это уже 4 марта в UTC+3.
	s := []model.Sale{sale("s", "p", "Cola", 1, "7", model.PaymentCash, "u", "U", time.Date(2026, 3, 3, 22, 30, 0, 0, time.UTC))}

	assertDec(t, "7", Windows(s, local).Today)
	assertDec(t, "0", Windows(s, now).Today)
}

func TestDailyRevenue(t *testing.T) {
	days := DailyRevenue(fixture(), now)
	require.Len(t, days, 7)

	labels := make([]string, 0, 7)
	for _, d := range days {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"}, labels)

	want := []string{"1", "20", "0", "0", "0", "10", "20"}
	for i, d := range days {
		assertDec(t, want[i], d.Revenue)
	}
	assert.True(t, days[6].Date.Equal(at(time.March, 4, 0)))
}

func TestStaffStats(t *testing.T) {
	stats := StaffStats(fixture(), users(), now)
	require.Len(t, stats, 3, "admins are excluded")

	assert.Equal(t, "u1", stats[0].UserID)
	assert.Equal(t, "Kofi", stats[0].Name)
	assert.Equal(t, "Kofi Mensah", stats[0].FullName)
	assertDec(t, "15", stats[0].Total)
	assert.Equal(t, 1, stats[0].Count)

	assert.Equal(t, "u2", stats[1].UserID)
	assertDec(t, "5", stats[1].Total)

	assert.Equal(t, "Yaw", stats[2].Name)
	assertDec(t, "0", stats[2].Total)
	assert.Equal(t, 0, stats[2].Count)
}

func TestTopProducts(t *testing.T) {
	top := TopProducts(fixture(), TopProductsLimit)
	require.Len(t, top, 4)
	assert.Equal(t, []string{"p2", "p1", "p3", "p4"}, []string{top[0].ProductID, top[1].ProductID, top[2].ProductID, top[3].ProductID})
	assert.Equal(t, 42, top[0].Quantity)
	assertDec(t, "105", top[0].Revenue)
	assert.Equal(t, "Cola", top[1].Name)

	assert.Len(t, TopProducts(fixture(), 2), 2)
	assert.Empty(t, TopProducts(nil, TopProductsLimit))
}

func TestPaymentSplit(t *testing.T) {
	tests := []struct {
		name     string
		sales    []model.Sale
		wantMomo int
		wantCash int
	}{
		{name: "fixture", sales: fixture(), wantMomo: 25, wantCash: 75},
		{name: "no sales", sales: nil, wantMomo: 0, wantCash: 0},
		{
			name: "thirds",
			sales: []model.Sale{
				sale("a", "p", "x", 1, "1", model.PaymentMomo, "u", "U", now),
				sale("b", "p", "x", 1, "2", model.PaymentCash, "u", "U", now),
			},
			wantMomo: 33,
			wantCash: 67,
		},
		{
			name: "half rounds up",
			sales: []model.Sale{
				sale("a", "p", "x", 1, "1", model.PaymentMomo, "u", "U", now),
				sale("b", "p", "x", 1, "7", model.PaymentCash, "u", "U", now),
			},
			wantMomo: 13,
			wantCash: 87,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := PaymentSplit(tt.sales, now)
			assert.Equal(t, tt.wantMomo, sp.MomoPercent)
			assert.Equal(t, tt.wantCash, sp.CashPercent)
			if !sp.Total.IsZero() {
				assert.Equal(t, 100, sp.MomoPercent+sp.CashPercent)
			}
		})
	}
}

func TestTrendOf(t *testing.T) {
	yesterday := at(time.March, 3, 12)
	mk := func(y, today string) []model.Sale {
		out := []model.Sale{}
		if y != "" {
			out = append(out, sale("y", "p", "x", 1, y, model.PaymentCash, "u", "U", yesterday))
		}
		if today != "" {
			out = append(out, sale("t", "p", "x", 1, today, model.PaymentCash, "u", "U", now))
		}
		return out
	}

	assert.Nil(t, TrendOf(mk("", "10"), now))
	assert.Equal(t, &Trend{Direction: DirectionUp, Percent: 100}, TrendOf(mk("10", "20"), now))
	assert.Equal(t, &Trend{Direction: DirectionDown, Percent: 25}, TrendOf(mk("20", "15"), now))
	assert.Equal(t, &Trend{Direction: DirectionFlat, Percent: 0}, TrendOf(mk("20", "20"), now))
	assert.Equal(t, &Trend{Direction: DirectionDown, Percent: 67}, TrendOf(mk("3", "1"), now))
	assert.Equal(t, &Trend{Direction: DirectionDown, Percent: 100}, TrendOf(mk("3", ""), now))
}

func TestBuildDashboard(t *testing.T) {
	sales := fixture()
	for i := 0; i < 10; i++ {
		sales = append(sales, sale(fmt.Sprintf("r%d", i), "p1", "Cola", 1, "5", model.PaymentCash, "u1", "Kofi Mensah", at(time.March, 4, 12).Add(time.Duration(i)*time.Minute)))
	}
	products := []model.Product{
		{ID: "p1", Name: "Cola", Price: decimal.NewFromInt(5), Quantity: 4},
		{ID: "p2", Name: "Bread", Price: decimal.NewFromInt(2), Quantity: 100},
		{ID: "p3", Name: "Rice", Price: decimal.NewFromInt(20), Quantity: 0},
	}

	d := BuildDashboard(products, sales, users(), now)

	assertDec(t, "70", d.Totals.Today)
	assert.Equal(t, 12, d.TodayCount)
	require.Len(t, d.Recent, RecentLimit)
	assert.Equal(t, "r9", d.Recent[0].ID)
	assert.Equal(t, "r2", d.Recent[7].ID)
	require.Len(t, d.LowStock, 2)
	assert.Equal(t, "p1", d.LowStock[0].ID)
	assert.Equal(t, model.StockStatusOutOfStock, d.LowStock[1].Status)
	assert.Len(t, d.DailyRevenue, 7)
	require.NotNil(t, d.Trend)
	assert.Equal(t, DirectionUp, d.Trend.Direction)
}

func TestUserDay(t *testing.T) {
	sales := append(fixture(), sale("s7", "p2", "Bread", 1, "2.50", model.PaymentMomo, "u1", "Kofi Mensah", at(time.March, 4, 13)))

	d := UserDay(sales, "u1", now)
	assert.Equal(t, 2, d.Count)
	assertDec(t, "17.5", d.Total)
	assertDec(t, "2.5", d.Momo)
	assertDec(t, "15", d.Cash)
	assert.Equal(t, "s7", d.Sales[0].ID)

	none := UserDay(sales, "u3", now)
	assert.Equal(t, 0, none.Count)
	assertDec(t, "0", none.Total)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		f       SaleFilter
		wantIDs []string
		wantAmt string
	}{
		{name: "all newest first", f: SaleFilter{}, wantIDs: []string{"s2", "s1", "s3", "s4", "s6", "s5"}, wantAmt: "151"},
		{name: "query", f: SaleFilter{Query: "  COL "}, wantIDs: []string{"s1", "s3"}, wantAmt: "25"},
		{name: "method", f: SaleFilter{Method: model.PaymentMomo}, wantIDs: []string{"s2", "s4"}, wantAmt: "25"},
		{name: "staff", f: SaleFilter{StaffID: "u2"}, wantIDs: []string{"s2", "s6", "s5"}, wantAmt: "106"},
		{
			name:    "date range inclusive",
			f:       SaleFilter{From: at(time.February, 27, 0), To: at(time.March, 3, 0)},
			wantIDs: []string{"s3", "s4"},
			wantAmt: "30",
		},
		{name: "no match", f: SaleFilter{Query: "fanta"}, wantIDs: []string{}, wantAmt: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, totals := Filter(fixture(), tt.f)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assertDec(t, tt.wantAmt, totals.Amount)
			assert.True(t, totals.Amount.Equal(totals.Momo.Add(totals.Cash)))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	sales := []model.Sale{
		sale("s1", "p1", "Cola", 3, "15", model.PaymentCash, "u1", "Kofi Mensah", at(time.March, 4, 10)),
		sale("s2", "p2", "Bread, large", 1, "2.5", model.PaymentMomo, "u2", "Ama", at(time.March, 4, 11)),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sales, time.UTC))

	want := "Product,Qty,Amount,Method,Staff,Date\n" +
		"Cola,3,15.00,cash,Kofi Mensah,2026-03-04 10:00:00\n" +
		"\"Bread, large\",1,2.50,momo,Ama,2026-03-04 11:00:00\n"
	assert.Equal(t, want, buf.String())
}
