package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramClient is the slice of the Telegram Bot API the delivery path
// needs. *tgbotapi.BotAPI satisfies it.
type TelegramClient interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// DeliveryUsecase grants a paying buyer access to the restricted channel.
type DeliveryUsecase struct {
	tg        TelegramClient
	channelID int64
	logger    *zap.Logger
}

func NewDeliveryUsecase(tg TelegramClient, channelID int64, logger *zap.Logger) *DeliveryUsecase {
	return &DeliveryUsecase{
		tg:        tg,
		channelID: channelID,
		logger:    logger,
	}
}

// Deliver creates a single-use invite link to the channel and sends it to
// the buyer. It must only run on the dispatcher goroutine, which owns all
// Telegram sends.
func (uc *DeliveryUsecase) Deliver(ctx context.Context, buyerID int64) error {
	link, err := uc.createInviteLink()
	if err != nil {
		uc.logger.Error("failed to create invite link",
			zap.Int64("buyer_id", buyerID),
			zap.Int64("channel_id", uc.channelID),
			zap.Error(err))
		return fmt.Errorf("create invite link: %w", err)
	}

	text := fmt.Sprintf(
		"Payment confirmed, thank you!\n\n"+
			"Here is your personal invite to the album channel (valid for one join only):\n\n%s",
		link,
	)
	if _, err := uc.tg.Send(tgbotapi.NewMessage(buyerID, text)); err != nil {
		uc.logger.Error("failed to send invite link",
			zap.Int64("buyer_id", buyerID),
			zap.Error(err))
		return fmt.Errorf("send invite link: %w", err)
	}

	uc.logger.Info("access granted",
		zap.Int64("buyer_id", buyerID),
		zap.Int64("channel_id", uc.channelID))
	return nil
}

// createInviteLink asks Telegram for a fresh channel invite link capped at a
// single redemption.
func (uc *DeliveryUsecase) createInviteLink() (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: uc.channelID},
		MemberLimit: 1,
	}

	resp, err := uc.tg.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("createChatInviteLink request failed: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to parse invite link response: %w", err)
	}
	if link.InviteLink == "" {
		return "", fmt.Errorf("invite link response contained no link")
	}
	return link.InviteLink, nil
}
