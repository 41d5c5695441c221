package usecase

import (
	"context"
	"fmt"

	"album-bot/config"
	"album-bot/internal/domain"
	"album-bot/internal/provider"

	"go.uber.org/zap"
)

// PurchaseUsecase turns a confirmed purchase into a hosted-checkout URL.
type PurchaseUsecase struct {
	provider  provider.PaymentProvider
	product   config.ProductConfig
	server    config.ServerConfig
	returnURL string
	logger    *zap.Logger
}

func NewPurchaseUsecase(
	paymentProvider provider.PaymentProvider,
	cfg *config.Config,
	returnURL string,
	logger *zap.Logger,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		provider:  paymentProvider,
		product:   cfg.Product,
		server:    cfg.Server,
		returnURL: returnURL,
		logger:    logger,
	}
}

// InitiatePurchase makes the single payment-initiation attempt for buyer and
// returns the checkout URL. The transaction reference it generates is the
// correlation token the gateway later echoes back on the webhook.
func (uc *PurchaseUsecase) InitiatePurchase(ctx context.Context, buyer domain.Buyer) (string, error) {
	txRef := domain.EncodeTxRef(buyer.ID, uc.product.Tag)

	firstName := buyer.FirstName
	if firstName == "" {
		firstName = "User"
	}
	lastName := buyer.LastName
	if lastName == "" {
		lastName = "Bot"
	}

	req := &domain.PaymentRequest{
		Amount:      uc.product.Price,
		Currency:    uc.product.Currency,
		Email:       fmt.Sprintf("%d@telegram.user", buyer.ID),
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       txRef,
		CallbackURL: uc.server.WebhookURL(),
		ReturnURL:   uc.returnURL,
		Title:       uc.product.Title,
		Description: uc.product.Description,
	}

	uc.logger.Info("initiating payment",
		zap.Int64("buyer_id", buyer.ID),
		zap.String("tx_ref", txRef),
		zap.String("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("provider", uc.provider.GetName()))

	result, err := uc.provider.InitializePayment(ctx, req)
	if err != nil {
		uc.logger.Error("payment initiation failed",
			zap.Int64("buyer_id", buyer.ID),
			zap.String("tx_ref", txRef),
			zap.Error(err))
		return "", fmt.Errorf("initiate payment: %w", err)
	}

	uc.logger.Info("payment initiated",
		zap.Int64("buyer_id", buyer.ID),
		zap.String("tx_ref", txRef))

	return result.CheckoutURL, nil
}
