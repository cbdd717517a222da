package handler

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unit-roster/internal/service"
)

// /painel
func (h *Handler) showDashboard(message *tgbotapi.Message) {
	h.reply(message, service.FormatDashboard(h.reports.Dashboard(h.recentLimit)))
}

// /relatorio
func (h *Handler) showLeaveTypeReport(message *tgbotapi.Message) {
	h.reply(message, service.FormatTypeCounts(h.reports.LeaveTypeCounts()))
}
