package status

import (
	"fmt"
	"strings"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderRecord(record domain.Record, s styles) string {
	rows := []string{
		s.train.Render(record.TrainName),
		field("PNR", record.PNR.String(), s),
		field("Current location", record.CurrentLocation, s),
		field("Est. arrival", record.EstimatedArrival, s),
		field("Seat", record.SeatDetails, s),
	}
	return s.card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func field(label, value string, s styles) string {
	if strings.TrimSpace(value) == "" {
		value = "n/a"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(label+":"), s.detail.Render(value))
}

func renderNotification(n domain.Notification, s styles) string {
	style := s.notice
	switch n.Kind {
	case domain.NotifyInvalidIdentifier, domain.NotifyRecordNotFound, domain.NotifyLookupFailed,
		domain.NotifyPermissionDenied, domain.NotifyMessagesUnavailable:
		style = s.warning
	}
	return style.Render(n.Title) + " " + s.detail.Render(n.Message)
}

func renderLastMessage(text string, s styles) string {
	text = strings.Join(strings.Fields(text), " ")
	const maxLen = 72
	if len([]rune(text)) > maxLen {
		text = string([]rune(text)[:maxLen-1]) + "…"
	}
	return s.header.Render(fmt.Sprintf("last message: %q", text))
}
