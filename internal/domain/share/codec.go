package share

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	apperrors "github.com/varad-more/Voyagent/pkg/errors"
)

// Icon tags rendered next to each block in the plaintext view.
var blockIcons = map[string]string{
	itinerary.BlockMeal:     "🍽️",
	itinerary.BlockTravel:   "🚗",
	itinerary.BlockActivity: "🎯",
	itinerary.BlockRest:     "😴",
}

// PlainText walks days and blocks in order and renders a shareable
// summary. It is a pure view over the document snapshot.
func PlainText(doc itinerary.Payload) string {
	var b strings.Builder
	dest := doc.Request.Destination
	if dest == "" {
		dest = "Your Trip"
	}
	fmt.Fprintf(&b, "Trip to %s\n", dest)
	if doc.Request.StartDate != "" && doc.Request.EndDate != "" {
		fmt.Fprintf(&b, "%s to %s, %d days\n", doc.Request.StartDate, doc.Request.EndDate, len(doc.Days))
	}

	for _, day := range doc.Days {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Day %d", day.DayNumber)
		if day.Theme != "" {
			fmt.Fprintf(&b, " - %s", day.Theme)
		}
		if day.Date != "" {
			fmt.Fprintf(&b, " (%s)", day.Date)
		}
		b.WriteString("\n")
		for _, block := range day.Blocks {
			fmt.Fprintf(&b, "  %s-%s %s %s\n", block.StartTime, block.EndTime, iconFor(block.BlockType), block.Title)
		}
	}

	if total, currency, ok := budgetTotal(doc.Budget); ok {
		fmt.Fprintf(&b, "\nBudget total: %s %.0f\n", currency, total)
	}
	return b.String()
}

// Ref yields the opaque share path for a server-identified document.
// Local/demo documents have no reference; callers fall back to the
// plaintext view.
func Ref(doc itinerary.Payload) (string, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return "", apperrors.Wrap(apperrors.CodeNoDocument, "document has no server identity to share", nil)
	}
	return "/share/" + doc.ID, nil
}

// URL joins the share path onto the public base URL.
func URL(publicBaseURL string, doc itinerary.Payload) (string, error) {
	ref, err := Ref(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(publicBaseURL, "/") + ref, nil
}

// QR renders the share URL as a PNG for the share dialog.
func QR(publicBaseURL string, doc itinerary.Payload, size int) ([]byte, error) {
	url, err := URL(publicBaseURL, doc)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePlannerError, "encode share qr", err)
	}
	return png, nil
}

func iconFor(blockType string) string {
	if icon, ok := blockIcons[blockType]; ok {
		return icon
	}
	return blockIcons[itinerary.BlockActivity]
}

func budgetTotal(budget itinerary.BudgetPlan) (float64, string, bool) {
	currency := budget.Currency
	if currency == "" {
		currency = "USD"
	}
	if budget.EstimatedTotal > 0 {
		return budget.EstimatedTotal, currency, true
	}
	if budget.TotalBudget > 0 {
		return budget.TotalBudget, currency, true
	}
	return 0, "", false
}
