// Package synth generates seeded synthetic household ledgers for demos and
// bootstrapping the models.
package synth

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/finno/internal/domain/model"
)

// Generation ranges.
const (
	variationMin  = 0.9
	variationSpan = 0.2
	maxDaysAgo    = 180
	monthsPerYear = 12
)

// Template describes one kind of recurring transaction. Text may contain
// {amount} and {month} placeholders.
type Template struct {
	Text       string
	BaseAmount int64
	Category   model.Category
	Intent     model.Intent
	Recipient  string
}

// Templates is the default transaction mix.
var Templates = []Template{
	{"Chuyển tiền cho Nguyễn Văn A - {amount} VND", 500_000, model.CategoryTransfer, model.IntentTransfer, "Nguyễn Văn A"},
	{"Thanh toán hóa đơn điện tháng {month} - {amount} VND", 150_000, model.CategoryBills, model.IntentPayment, "EVN"},
	{"Mua sắm tại BigC - {amount} VND", 200_000, model.CategoryShopping, model.IntentPurchase, "BigC"},
	{"Rút tiền ATM Vietcombank - {amount} VND", 1_000_000, model.CategoryWithdrawal, model.IntentWithdrawal, "ATM Vietcombank"},
	{"Nhận lương tháng {month}/2024 - {amount} VND", 15_000_000, model.CategoryIncome, model.IntentSalary, "Công ty ABC"},
	{"Thanh toán học phí con - {amount} VND", 3_000_000, model.CategoryEducation, model.IntentPayment, "Trường học"},
	{"Mua xăng xe máy - {amount} VND", 50_000, model.CategoryTransport, model.IntentPurchase, "Cây xăng"},
	{"Ăn trưa tại nhà hàng - {amount} VND", 80_000, model.CategoryFood, model.IntentPurchase, "Nhà hàng"},
	{"Mua thuốc tại nhà thuốc - {amount} VND", 120_000, model.CategoryHealth, model.IntentPurchase, "Nhà thuốc"},
	{"Đóng bảo hiểm xe máy - {amount} VND", 200_000, model.CategoryBills, model.IntentPayment, "Bảo hiểm"},
	{"Mua quần áo tại Uniqlo - {amount} VND", 400_000, model.CategoryShopping, model.IntentPurchase, "Uniqlo"},
	{"Thanh toán internet VNPT - {amount} VND", 200_000, model.CategoryBills, model.IntentPayment, "VNPT"},
	{"Mua đồ chơi cho con - {amount} VND", 150_000, model.CategoryEntertainment, model.IntentPurchase, "Cửa hàng đồ chơi"},
	{"Ăn tối gia đình - {amount} VND", 300_000, model.CategoryFood, model.IntentPurchase, "Nhà hàng gia đình"},
	{"Mua sách tại Fahasa - {amount} VND", 80_000, model.CategoryEducation, model.IntentPurchase, "Fahasa"},
}

// User is one synthetic household.
type User struct {
	ID           string
	Transactions []model.Transaction
}

// Generator draws transactions from templates. It is not safe for
// concurrent use.
type Generator struct {
	rng       *rand.Rand
	now       time.Time
	templates []Template
}

// Option applies a configuration option to the generator.
type Option func(*Generator)

// WithNow anchors generated timestamps.
func WithNow(now time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithTemplates replaces the transaction mix. Empty input is ignored.
func WithTemplates(templates []Template) Option {
	return func(g *Generator) {
		if len(templates) > 0 {
			g.templates = templates
		}
	}
}

// New returns a generator seeded with seed.
func New(seed int64, opts ...Option) *Generator {
	g := &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		now:       time.Now(),
		templates: Templates,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transaction draws one transaction: a random template, its base amount
// varied by up to 10% either way, dated up to 180 days before now.
func (g *Generator) Transaction() model.Transaction {
	t := g.templates[g.rng.Intn(len(g.templates))]
	amount := int64(float64(t.BaseAmount) * (variationMin + g.rng.Float64()*variationSpan))
	daysAgo := g.rng.Intn(maxDaysAgo + 1)
	month := g.rng.Intn(monthsPerYear) + 1

	text := strings.NewReplacer(
		"{amount}", strconv.FormatInt(amount, 10),
		"{month}", strconv.Itoa(month),
	).Replace(t.Text)

	return model.Transaction{
		ID:        g.id(),
		Amount:    amount,
		Category:  t.Category,
		Intent:    t.Intent,
		Recipient: t.Recipient,
		Timestamp: g.now.AddDate(0, 0, -daysAgo),
		RawText:   text,
	}
}

// Transactions draws n transactions.
func (g *Generator) Transactions(n int) []model.Transaction {
	out := make([]model.Transaction, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.Transaction())
	}
	return out
}

// Population draws users households of perUser transactions each.
func (g *Generator) Population(users, perUser int) []User {
	out := make([]User, 0, max(users, 0))
	for i := 0; i < users; i++ {
		out = append(out, User{ID: g.id(), Transactions: g.Transactions(perUser)})
	}
	return out
}

// id draws a UUID from the seeded source so populations are reproducible.
func (g *Generator) id() string {
	return uuid.Must(uuid.NewRandomFromReader(g.rng)).String()
}
