// Package itinerary renders the travel document handed out for confirmed bookings.
package itinerary

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const ContentType = "text/html; charset=utf-8"

var (
	markdown     goldmark.Markdown
	markdownOnce sync.Once
)

func renderer() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.Table))
	})
	return markdown
}

// FileName is the attachment name of a booking's itinerary.
func FileName(bookingID int64) string {
	return fmt.Sprintf("Itinerary_%d.html", bookingID)
}

// Render builds the itinerary as a standalone HTML page.
func Render(b *domain.Booking, pkg *domain.TravelPackage) ([]byte, error) {
	var md strings.Builder
	md.WriteString("# Travel Itinerary\n\n")
	md.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&md, "| Trip | %s |\n", escape(pkg.Name))
	fmt.Fprintf(&md, "| Destination | %s, %s |\n", escape(pkg.Destination), escape(pkg.Country))
	fmt.Fprintf(&md, "| Departure | %s |\n", b.DepartureDate.Format("02 Jan 2006"))
	fmt.Fprintf(&md, "| Return | %s |\n", pkg.EndDate.Format("02 Jan 2006"))
	fmt.Fprintf(&md, "| Price paid | €%s |\n", FormatCents(b.TotalPriceCents))
	fmt.Fprintf(&md, "| Booking ID | %d |\n", b.ID)
	if pkg.Description != "" {
		md.WriteString("\n## About the trip\n\n")
		md.WriteString(pkg.Description)
		md.WriteString("\n")
	}

	var body bytes.Buffer
	if err := renderer().Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("render itinerary %d: %w", b.ID, err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Travel Itinerary</title></head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("<footer>© TravelAgency</footer>\n</body>\n</html>\n")
	return out.Bytes(), nil
}

// FormatCents prints an amount of cents as units with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
