package handler

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
	"unit-roster/internal/service"
)

// /efetivo [busca]
func (h *Handler) listPersonnel(message *tgbotapi.Message, query string) {
	h.reply(message, service.FormatPersonnelList(h.roster.SearchPersonnel(query)))
}

// /militar <id>
func (h *Handler) showPersonnel(message *tgbotapi.Message, args string) {
	if args == "" {
		h.reply(message, "❌ Informe o ID. Exemplo: /militar P1")
		return
	}

	id := strings.ToUpper(strings.Fields(args)[0])
	p := h.roster.FindPersonnelByID(id)
	if p == nil {
		h.replyError(message, &models.NotFoundError{Kind: "personnel", ID: id})
		return
	}

	history, err := h.reports.PersonnelLeaveHistory(id)
	if err != nil {
		h.replyError(message, err)
		return
	}

	h.reply(message, service.FormatPersonnel(p)+"\n\n"+service.FormatHistory(p, history))
}

// /cadastrar nome=Maria Silva; matr=12345; grad=CAP
func (h *Handler) registerPersonnel(ctx context.Context, message *tgbotapi.Message, args string) {
	if args == "" {
		h.reply(message, "❌ Informe os campos. Exemplo: /cadastrar nome=Maria Silva; matr=12345; grad=CAP")
		return
	}

	in, err := parsePersonnelInput(args)
	if err != nil {
		h.replyError(message, err)
		return
	}

	p, err := h.roster.RegisterPersonnel(ctx, in)
	if err != nil {
		h.replyError(message, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":      message.Chat.ID,
		"personnel_id": p.ID,
	}).Info("Personnel registered from chat")

	h.reply(message, "✅ Militar cadastrado!\n\n"+service.FormatPersonnel(p))
}

// parsePersonnelInput reads "campo=valor" pairs separated by ";" on top of the form defaults.
func parsePersonnelInput(args string) (models.PersonnelInput, error) {
	in := models.NewPersonnelInput()

	for _, pair := range strings.Split(args, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return in, models.NewValidationError("campo", "esperado campo=valor em %q", pair)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if err := setPersonnelField(&in, key, value); err != nil {
			return in, err
		}
	}

	return in, nil
}

func setPersonnelField(in *models.PersonnelInput, key, value string) error {
	var err error
	switch key {
	case "nome":
		in.Name = value
	case "matr", "matricula":
		in.Registration = value
	case "grad":
		in.Rank, err = models.ParseRank(value)
	case "role":
		in.Role, err = models.ParseUserRole(value)
	case "ant":
		in.Seniority, err = parseNumber(key, value)
	case "quadro":
		in.Corps = value
	case "unid":
		in.Unit = value
	case "secao":
		in.Section = value
	case "situacao":
		in.Status = value
	case "esc":
		in.DutySchedule = value
	case "saldoferias":
		in.VacationBalance, err = parseNumber(models.FieldVacation, value)
	case "saldoabono":
		in.SpecialLeaveBalance, err = parseNumber(models.FieldSpecialLeave, value)
	default:
		return models.NewValidationError(key, "campo desconhecido")
	}
	return err
}

func parseNumber(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, models.NewValidationError(field, "%q não é um número", value)
	}
	return n, nil
}
