package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unit-roster/internal/models"
	"unit-roster/internal/service"
)

const leaveUsage = "❌ Formato: /afastamento <id> <tipo> <início> <fim> [descrição]\nExemplo: /afastamento P1 ferias 01.07.2026 10.07.2026"

// /afastamento <id> <tipo> <início> <fim> [descrição]
func (h *Handler) logLeave(ctx context.Context, message *tgbotapi.Message, args string) {
	parts := strings.Fields(args)
	if len(parts) < 4 {
		h.reply(message, leaveUsage)
		return
	}

	id := strings.ToUpper(parts[0])
	if h.roster.FindPersonnelByID(id) == nil {
		h.replyError(message, &models.NotFoundError{Kind: "personnel", ID: id})
		return
	}

	leaveType, err := models.ParseLeaveType(parts[1])
	if err != nil {
		h.replyError(message, err)
		return
	}
	start, err := h.parseDate(models.FieldStartDate, parts[2])
	if err != nil {
		h.replyError(message, err)
		return
	}
	end, err := h.parseDate(models.FieldEndDate, parts[3])
	if err != nil {
		h.replyError(message, err)
		return
	}
	description := strings.Join(parts[4:], " ")

	rec, err := h.roster.LogLeave(ctx, id, leaveType, start, end, description)
	if err != nil {
		h.replyError(message, err)
		return
	}

	text := "✅ Afastamento registrado!\n\n" + service.FormatLeave(*rec)
	if p := h.roster.FindPersonnelByID(id); p != nil {
		switch leaveType {
		case models.LeaveVacation:
			text += fmt.Sprintf("\n🏖 Saldo de férias de %s: %d", p.Name, p.VacationBalance)
		case models.LeaveAbstention:
			text += fmt.Sprintf("\n🎫 Saldo de abono de %s: %d", p.Name, p.SpecialLeaveBalance)
		}
	}
	h.reply(message, text)
}

var dateLayouts = []string{
	"02.01.2006",
	"02-01-2006",
	models.DateLayout,
	"02/01/2006",
}

// parseDate accepts day-first dates, ISO dates and "DD.MM" for the current year.
func (h *Handler) parseDate(field, value string) (models.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return checkYear(field, value, models.DateOf(t))
		}
	}
	for _, layout := range []string{"02.01", "02-01"} {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		// time.Parse checks the day against year 0, a leap year.
		year := h.now().Year()
		d := models.NewDate(year, t.Month(), t.Day())
		if d.Month() != t.Month() || d.Day() != t.Day() {
			return models.Date{}, models.NewValidationError(field, "data %q não existe em %d", value, year)
		}
		return checkYear(field, value, d)
	}

	return models.Date{}, models.NewValidationError(field,
		"data %q inválida, use DD.MM.AAAA, DD-MM-AAAA ou AAAA-MM-DD", value)
}

func checkYear(field, value string, d models.Date) (models.Date, error) {
	if d.Year() < models.MinYear {
		return models.Date{}, models.NewValidationError(field, "data %q anterior a %d", value, models.MinYear)
	}
	return d, nil
}
