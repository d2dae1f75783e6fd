package notifications

import (
	"fmt"
	"html"
	"strings"

	"github.com/refferq/referral_api/models"
	"github.com/shopspring/decimal"
)

// FormatCents renders integer cents as a two-decimal amount.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func PayoutCreatedEmail(user models.User, payout models.Payout) (subject, body string) {
	subject = "A payout has been created for you"
	body = fmt.Sprintf(
		"<h1>Payout created</h1><p>Hi %s,</p><p>A payout of <b>%s</b> covering %d commission(s) has been created and will be sent via %s.</p>",
		html.EscapeString(user.FullName), FormatCents(payout.AmountCents), payout.CommissionCount, html.EscapeString(payout.Method),
	)
	return subject, body
}

func PayoutCompletedEmail(user models.User, payout models.Payout) (subject, body string) {
	subject = "Your payout has been sent"
	body = fmt.Sprintf(
		"<h1>Payout completed</h1><p>Hi %s,</p><p>Your payout of <b>%s</b> has been completed via %s.</p>",
		html.EscapeString(user.FullName), FormatCents(payout.AmountCents), html.EscapeString(payout.Method),
	)
	if payout.StatementURL != nil {
		body += fmt.Sprintf("<p><a href='%s'>Download your statement</a></p>", html.EscapeString(*payout.StatementURL))
	}
	return subject, body
}

func CommissionEarnedEmail(user models.User, txn models.Transaction) (subject, body string) {
	subject = "You earned a commission"
	body = fmt.Sprintf(
		"<h1>New commission</h1><p>Hi %s,</p><p>A sale of <b>%s</b> from %s earned you <b>%s</b> (%s%%).</p>",
		html.EscapeString(user.FullName),
		FormatCents(txn.AmountCents),
		html.EscapeString(txn.CustomerName),
		FormatCents(txn.CommissionCents),
		decimal.NewFromFloat(txn.CommissionRate).Mul(decimal.NewFromInt(100)).String(),
	)
	return subject, body
}

func StalePayoutsEmail(payouts []models.Payout, olderThanDays int) (subject, body string) {
	subject = fmt.Sprintf("%d payout(s) pending for more than %d days", len(payouts), olderThanDays)

	var rows strings.Builder
	for _, p := range payouts {
		fmt.Fprintf(&rows, "<li>%s: %s (%s), created %s</li>",
			p.ID, FormatCents(p.AmountCents), html.EscapeString(p.Method), p.CreatedAt.Format("2006-01-02"))
	}
	body = fmt.Sprintf("<h1>Stale payouts</h1><ul>%s</ul>", rows.String())
	return subject, body
}
