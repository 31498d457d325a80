package tradingprovider

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/utils"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

const (
	// BinanceDecimalPrecision is the quantity precision used when formatting orders.
	BinanceDecimalPrecision = 8
	// DefaultQuoteAsset is appended to tickers when the config names none.
	DefaultQuoteAsset = "USDT"
)

// Service interfaces for mocking the Binance API

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Price(price string) CreateOrderService
	TimeInForce(tif binance.TimeInForceType) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// GetAccountService interface for getting account info.
type GetAccountService interface {
	Do(ctx context.Context) (*binance.Account, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewCreateOrderService() CreateOrderService
	NewGetAccountService() GetAccountService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realBinanceClient) NewGetAccountService() GetAccountService {
	return &realGetAccountService{service: r.client.NewGetAccountService()}
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Price(price string) CreateOrderService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOrderService) TimeInForce(tif binance.TimeInForceType) CreateOrderService {
	s.service = s.service.TimeInForce(tif)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realGetAccountService struct {
	service *binance.GetAccountService
}

func (s *realGetAccountService) Do(ctx context.Context) (*binance.Account, error) {
	return s.service.Do(ctx)
}

// BinanceBroker forwards LIVE session orders to Binance spot.
type BinanceBroker struct {
	client           BinanceClient
	decimalPrecision int
	quoteAsset       string
}

// NewBinanceBroker creates a Binance broker. If useTestnet is true it
// connects to the Binance testnet; config.BaseURL overrides both.
func NewBinanceBroker(config BinanceProviderConfig, useTestnet bool) (*BinanceBroker, error) {
	if useTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)

	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceBrokerWithClient(&realBinanceClient{client: client}, config.QuoteAsset), nil
}

func newBinanceBrokerWithClient(client BinanceClient, quoteAsset string) *BinanceBroker {
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}

	return &BinanceBroker{
		client:           client,
		decimalPrecision: BinanceDecimalPrecision,
		quoteAsset:       quoteAsset,
	}
}

// MarketSymbol maps a ticker to the Binance market symbol.
func (b *BinanceBroker) MarketSymbol(symbol string) string {
	return symbol + b.quoteAsset
}

// PlaceOrder places a single spot order. A rejected or expired order yields None.
func (b *BinanceBroker) PlaceOrder(ctx context.Context, order OrderRequest) (optional.Option[OrderConfirmation], error) {
	if err := validateOrder(order); err != nil {
		return optional.None[OrderConfirmation](), err
	}

	side := binance.SideTypeBuy
	if order.Side == types.ActionSell {
		side = binance.SideTypeSell
	}

	orderType := binance.OrderTypeMarket
	if order.Type == types.OrderTypeLimit {
		orderType = binance.OrderTypeLimit
	}

	roundedQuantity := utils.RoundToDecimalPrecision(order.Quantity, b.decimalPrecision)
	if roundedQuantity <= 0 {
		return optional.None[OrderConfirmation](), errors.Newf(errors.ErrCodeInvalidParameter,
			"order quantity %.8f is too small after rounding to %d decimal places",
			order.Quantity, b.decimalPrecision)
	}

	orderService := b.client.NewCreateOrderService().
		Symbol(b.MarketSymbol(order.Symbol)).
		Side(side).
		Type(orderType).
		Quantity(strconv.FormatFloat(roundedQuantity, 'f', b.decimalPrecision, 64))

	if order.Type == types.OrderTypeLimit {
		orderService = orderService.
			Price(strconv.FormatFloat(order.LimitPrice.Unwrap(), 'f', -1, 64)).
			TimeInForce(binance.TimeInForceTypeGTC)
	}

	resp, err := orderService.Do(ctx)
	if err != nil {
		return optional.None[OrderConfirmation](), errors.Wrap(errors.ErrCodeOrderFailed, "failed to place order on Binance", err)
	}

	if resp == nil || resp.Status == binance.OrderStatusTypeRejected || resp.Status == binance.OrderStatusTypeExpired {
		return optional.None[OrderConfirmation](), nil
	}

	submittedAt := time.Now().UTC()
	if resp.TransactTime > 0 {
		submittedAt = time.UnixMilli(resp.TransactTime).UTC()
	}

	return optional.Some(OrderConfirmation{
		OrderID:     strconv.FormatInt(resp.OrderID, 10),
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    roundedQuantity,
		Status:      string(resp.Status),
		SubmittedAt: submittedAt,
	}), nil
}

// QuoteBalance returns the free balance of the quote asset.
func (b *BinanceBroker) QuoteBalance(ctx context.Context) (float64, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeOrderFailed, "failed to get account info from Binance", err)
	}

	for _, balance := range account.Balances {
		if balance.Asset != b.quoteAsset {
			continue
		}

		free, err := strconv.ParseFloat(balance.Free, 64)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid %s balance", b.quoteAsset)
		}

		return free, nil
	}

	return 0, nil
}
