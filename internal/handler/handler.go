package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"unit-roster/internal/models"
	"unit-roster/internal/service"
)

// Sender delivers replies. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Roster is the part of the repository the bot calls.
type Roster interface {
	RegisterPersonnel(ctx context.Context, in models.PersonnelInput) (*models.Personnel, error)
	LogLeave(ctx context.Context, personnelID string, leaveType models.LeaveType, start, end models.Date, description string) (*models.LeaveRecord, error)
	FindPersonnelByID(id string) *models.Personnel
	SearchPersonnel(query string) []models.Personnel
}

type Handler struct {
	sender      Sender
	roster      Roster
	reports     *service.ReportService
	logger      *logrus.Logger
	recentLimit int
	now         func() time.Time
}

func NewHandler(
	sender Sender,
	roster Roster,
	reports *service.ReportService,
	logger *logrus.Logger,
	recentLimit int,
) *Handler {
	return &Handler{
		sender:      sender,
		roster:      roster,
		reports:     reports,
		logger:      logger,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// HandleUpdates processes updates one at a time until ctx is done or the channel closes.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			h.HandleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user":    username,
	}).Infof("Message: %s", message.Text)

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.reply(message, "ℹ️ Use /help para ver os comandos disponíveis.")
}

func (h *Handler) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	if _, err := h.sender.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", message.Chat.ID).Error("Failed to send reply")
	}
}

// replyError turns a core error into a chat reply.
func (h *Handler) replyError(message *tgbotapi.Message, err error) {
	var verr *models.ValidationError
	var nferr *models.NotFoundError

	switch {
	case errors.As(err, &verr):
		h.reply(message, fmt.Sprintf("❌ Dado inválido (%s): %s", verr.Field, verr.Message))
	case errors.As(err, &nferr):
		h.reply(message, fmt.Sprintf("❌ Militar %s não encontrado.", nferr.ID))
	default:
		h.logger.WithError(err).Error("Command failed")
		h.reply(message, "❌ Erro ao salvar os dados. Tente novamente mais tarde.")
	}
}
