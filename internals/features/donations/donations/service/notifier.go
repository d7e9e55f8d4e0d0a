package service

import (
	"context"
	"fmt"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"k9medics_backend/internals/configs"
	"k9medics_backend/internals/features/donations/donations/model"
	helper "k9medics_backend/internals/helpers"
)

type Notifier interface {
	DonationPaid(ctx context.Context, d *model.Donation) error
}

type NopNotifier struct{}

func (NopNotifier) DonationPaid(context.Context, *model.Donation) error { return nil }

// TelegramNotifier posts paid donations into the admins' chat.
type TelegramNotifier struct {
	Bot    *telego.Bot
	ChatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{Bot: bot, ChatID: chatID}, nil
}

func (n *TelegramNotifier) DonationPaid(ctx context.Context, d *model.Donation) error {
	_, err := n.Bot.SendMessage(ctx, tu.Message(tu.ID(n.ChatID), PaidMessage(d)))
	return err
}

func PaidMessage(d *model.Donation) string {
	msg := fmt.Sprintf("🐾 New donation: %s\nOrder: %s\nGateway: %s",
		helper.FormatMinor(d.DonationAmount, d.DonationCurrency), d.DonationOrderID, d.DonationPaymentGateway)
	if d.DonationEmail != nil {
		msg += "\nDonor: " + *d.DonationEmail
	}
	return msg
}

// NewNotifier falls back to NopNotifier when Telegram is not configured.
func NewNotifier(cfg configs.CheckoutConfig) Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramAdminChatID == 0 {
		log.Println("[INFO] Telegram notifier disabled")
		return NopNotifier{}
	}
	n, err := NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		log.Printf("[WARN] Telegram notifier disabled: %v", err)
		return NopNotifier{}
	}
	return n
}
