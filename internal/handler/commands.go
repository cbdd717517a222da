package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unit-roster/internal/models"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())

	switch command {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendHelpMessage(message)

	// Efetivo
	case "efetivo":
		h.listPersonnel(message, args)
	case "militar":
		h.showPersonnel(message, args)
	case "cadastrar":
		h.registerPersonnel(ctx, message, args)

	// Afastamentos
	case "afastamento":
		h.logLeave(ctx, message, args)
	case "tipos":
		h.listLeaveTypes(message)

	// Relatórios
	case "painel":
		h.showDashboard(message)
	case "relatorio":
		h.showLeaveTypeReport(message)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message, "❌ Comando desconhecido. Use /help para ver a lista de comandos.")
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	h.reply(message, "👋 Controle de efetivo e afastamentos da unidade.\n\n"+helpText)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.reply(message, helpText)
}

const helpText = `📋 Comandos disponíveis:

👥 Efetivo:
/efetivo [busca] - Lista o efetivo (filtra por nome ou matrícula)
/militar <id> - Ficha e afastamentos de um militar
/cadastrar campo=valor; ... - Cadastra um militar
   Campos: nome, matr, grad, ant, quadro, unid, secao, situacao, esc, saldoFerias, saldoAbono, role
   Exemplo: /cadastrar nome=Maria Silva; matr=12345; grad=CAP

🏖 Afastamentos:
/afastamento <id> <tipo> <início> <fim> [descrição]
   Exemplo: /afastamento P1 ferias 01.07.2026 10.07.2026 Férias regulamentares
/tipos - Tipos de afastamento aceitos

📊 Relatórios:
/painel - Efetivo, férias hoje e últimos afastamentos
/relatorio - Afastamentos por tipo

📅 Datas: DD.MM.AAAA, DD-MM-AAAA, AAAA-MM-DD ou DD.MM (ano atual)`

func (h *Handler) listLeaveTypes(message *tgbotapi.Message) {
	var lines []string
	lines = append(lines, "🗂 Tipos de afastamento:")
	lines = append(lines, "")
	for _, t := range models.AllLeaveTypes() {
		lines = append(lines, fmt.Sprintf("• %s (%s) - %s", t.Key(), t, t.Label()))
	}
	lines = append(lines, "")
	lines = append(lines, "Férias descontam do saldo de férias e abono do saldo de abono.")
	h.reply(message, strings.Join(lines, "\n"))
}
