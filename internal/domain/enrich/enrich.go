// Package enrich turns free-text bank notifications into categorised
// transactions with ordered keyword rules.
package enrich

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/finno/internal/domain/model"
)

var amountPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*|\d+)\s*VND`)

type categoryRule struct {
	category model.Category
	keywords []string
}

type intentRule struct {
	intent   model.Intent
	keywords []string
}

// Rules are checked in order and the first match wins. "tiền" under
// income also matches withdrawals such as "Rút tiền ATM"; callers that
// know the category should set it explicitly.
var categoryRules = []categoryRule{
	{model.CategoryTransfer, []string{"chuyển tiền", "chuyển"}},
	{model.CategoryIncome, []string{"lương", "tiền", "nhận"}},
	{model.CategoryFood, []string{"ăn", "nhà hàng", "cơm", "tối", "trưa"}},
	{model.CategoryTransport, []string{"xăng", "xe", "taxi", "grab"}},
	{model.CategoryShopping, []string{"mua", "sắm", "quần áo", "bigc", "uniqlo"}},
	{model.CategoryBills, []string{"hóa đơn", "điện", "internet", "vnpt", "bảo hiểm"}},
	{model.CategoryHealth, []string{"thuốc", "bệnh viện", "nhà thuốc"}},
	{model.CategoryEducation, []string{"học", "trường", "sách", "fahasa"}},
	{model.CategoryEntertainment, []string{"đồ chơi", "giải trí"}},
	{model.CategoryWithdrawal, []string{"rút", "atm"}},
}

var intentRules = []intentRule{
	{model.IntentTransfer, []string{"chuyển"}},
	{model.IntentPayment, []string{"thanh toán", "đóng"}},
	{model.IntentPurchase, []string{"mua"}},
	{model.IntentWithdrawal, []string{"rút"}},
	{model.IntentSalary, []string{"lương"}},
}

// knownRecipients are matched case-sensitively when no "cho "/"tại " marker
// is present.
var knownRecipients = []string{"ATM", "VNPT", "BigC"}

const unknownRecipient = "Unknown"

// Enrich parses raw into a transaction stamped at now. Missing amounts
// parse as zero, unmatched categories and intents as other.
func Enrich(raw string, now time.Time) model.Transaction {
	return model.Transaction{
		Amount:    Amount(raw),
		Category:  Category(raw),
		Intent:    Intent(raw),
		Recipient: Recipient(raw),
		Timestamp: now,
		RawText:   raw,
	}
}

// Amount extracts the first "<number> VND" amount, allowing comma
// thousand separators.
func Amount(raw string) int64 {
	m := amountPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Category classifies raw by the first matching keyword rule.
func Category(raw string) model.Category {
	text := strings.ToLower(raw)
	for _, r := range categoryRules {
		if containsAny(text, r.keywords) {
			return r.category
		}
	}
	return model.CategoryOther
}

// Intent classifies raw by the first matching keyword rule.
func Intent(raw string) model.Intent {
	text := strings.ToLower(raw)
	for _, r := range intentRules {
		if containsAny(text, r.keywords) {
			return r.intent
		}
	}
	return model.IntentOther
}

// Recipient takes the text after "cho " or "tại " up to " - ", then falls
// back to well-known merchants.
func Recipient(raw string) string {
	for _, marker := range []string{"cho ", "tại "} {
		if _, after, ok := strings.Cut(raw, marker); ok {
			name, _, _ := strings.Cut(after, " - ")
			return name
		}
	}
	for _, name := range knownRecipients {
		if strings.Contains(raw, name) {
			return name
		}
	}
	return unknownRecipient
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
