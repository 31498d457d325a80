package tradingprovider

import (
	"context"
	"errors"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	argoErrors "github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// mockBinanceClient implements BinanceClient interface for testing
type mockBinanceClient struct {
	createOrderService *mockCreateOrderService
	getAccountService  *mockGetAccountService
}

func newMockBinanceClient() *mockBinanceClient {
	return &mockBinanceClient{
		createOrderService: &mockCreateOrderService{},
		getAccountService:  &mockGetAccountService{},
	}
}

func (m *mockBinanceClient) NewCreateOrderService() CreateOrderService {
	return m.createOrderService
}

func (m *mockBinanceClient) NewGetAccountService() GetAccountService {
	return m.getAccountService
}

// mockCreateOrderService implements CreateOrderService
type mockCreateOrderService struct {
	response *binance.CreateOrderResponse
	err      error
	calls    int
	symbol   string
	side     binance.SideType
	orderTyp binance.OrderType
	quantity string
	price    string
	tif      binance.TimeInForceType
}

func (m *mockCreateOrderService) Symbol(symbol string) CreateOrderService {
	m.symbol = symbol
	return m
}

func (m *mockCreateOrderService) Side(side binance.SideType) CreateOrderService {
	m.side = side
	return m
}

func (m *mockCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	m.orderTyp = orderType
	return m
}

func (m *mockCreateOrderService) Quantity(quantity string) CreateOrderService {
	m.quantity = quantity
	return m
}

func (m *mockCreateOrderService) Price(price string) CreateOrderService {
	m.price = price
	return m
}

func (m *mockCreateOrderService) TimeInForce(tif binance.TimeInForceType) CreateOrderService {
	m.tif = tif
	return m
}

func (m *mockCreateOrderService) Do(_ context.Context) (*binance.CreateOrderResponse, error) {
	m.calls++
	return m.response, m.err
}

// mockGetAccountService implements GetAccountService
type mockGetAccountService struct {
	account *binance.Account
	err     error
}

func (m *mockGetAccountService) Do(_ context.Context) (*binance.Account, error) {
	return m.account, m.err
}

type BinanceBrokerTestSuite struct {
	suite.Suite
	client *mockBinanceClient
	broker *BinanceBroker
}

func TestBinanceBrokerTestSuite(t *testing.T) {
	suite.Run(t, new(BinanceBrokerTestSuite))
}

func (suite *BinanceBrokerTestSuite) SetupTest() {
	suite.client = newMockBinanceClient()
	suite.broker = newBinanceBrokerWithClient(suite.client, "")
}

func (suite *BinanceBrokerTestSuite) TestParseBinanceConfig_Valid() {
	config, err := ParseBinanceConfig(`{"apiKey":"key","secretKey":"secret","quoteAsset":"USDC"}`)
	suite.Require().NoError(err)
	suite.Equal("key", config.ApiKey)
	suite.Equal("secret", config.SecretKey)
	suite.Equal("USDC", config.QuoteAsset)
}

func (suite *BinanceBrokerTestSuite) TestParseBinanceConfig_MissingSecretKey() {
	_, err := ParseBinanceConfig(`{"apiKey":"key"}`)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidConfiguration))
}

func (suite *BinanceBrokerTestSuite) TestParseBinanceConfig_InvalidJSON() {
	_, err := ParseBinanceConfig(`{not json`)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidConfiguration))
}

func (suite *BinanceBrokerTestSuite) TestNewBinanceBroker() {
	broker, err := NewBinanceBroker(BinanceProviderConfig{ApiKey: "k", SecretKey: "s", BaseURL: "http://localhost:1"}, false)
	suite.Require().NoError(err)
	suite.Equal("AAPLUSDT", broker.MarketSymbol("AAPL"))
}

func (suite *BinanceBrokerTestSuite) TestPlaceOrder_MarketBuy_Success() {
	suite.client.createOrderService.response = &binance.CreateOrderResponse{
		OrderID:      12345,
		Status:       binance.OrderStatusTypeFilled,
		TransactTime: 1700000000000,
	}

	confirmation, err := suite.broker.PlaceOrder(context.Background(), OrderRequest{
		Symbol:   "AAPL",
		Quantity: 1,
		Side:     types.ActionBuy,
		Type:     types.OrderTypeMarket,
	})
	suite.Require().NoError(err)
	suite.Require().True(confirmation.IsSome())

	suite.Equal("12345", confirmation.Unwrap().OrderID)
	suite.Equal("FILLED", confirmation.Unwrap().Status)
	suite.Equal(int64(1700000000000), confirmation.Unwrap().SubmittedAt.UnixMilli())
	suite.Equal("AAPLUSDT", suite.client.createOrderService.symbol)
	suite.Equal(binance.SideTypeBuy, suite.client.createOrderService.side)
	suite.Equal(binance.OrderTypeMarket, suite.client.createOrderService.orderTyp)
	suite.Equal("1.00000000", suite.client.createOrderService.quantity)
	suite.Empty(suite.client.createOrderService.price)
}

func (suite *BinanceBrokerTestSuite) TestPlaceOrder_LimitSell_Success() {
	suite.client.createOrderService.response = &binance.CreateOrderResponse{OrderID: 7, Status: binance.OrderStatusTypeNew}

	confirmation, err := suite.broker.PlaceOrder(context.Background(), OrderRequest{
		Symbol:     "TSLA",
		Quantity:   2,
		Side:       types.ActionSell,
		Type:       types.OrderTypeLimit,
		LimitPrice: optional.Some(250.5),
	})
	suite.Require().NoError(err)
	suite.True(confirmation.IsSome())
	suite.Equal(binance.SideTypeSell, suite.client.createOrderService.side)
	suite.Equal("250.5", suite.client.createOrderService.price)
	suite.Equal(binance.TimeInForceTypeGTC, suite.client.createOrderService.tif)
}

func (suite *BinanceBrokerTestSuite) TestPlaceOrder_Rejected() {
	suite.client.createOrderService.response = &binance.CreateOrderResponse{OrderID: 9, Status: binance.OrderStatusTypeRejected}

	confirmation, err := suite.broker.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Quantity: 1, Side: types.ActionBuy, Type: types.OrderTypeMarket,
	})
	suite.NoError(err)
	suite.True(confirmation.IsNone())
}

func (suite *BinanceBrokerTestSuite) TestPlaceOrder_APIError() {
	suite.client.createOrderService.err = errors.New("insufficient balance")

	confirmation, err := suite.broker.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Quantity: 1, Side: types.ActionBuy, Type: types.OrderTypeMarket,
	})
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeOrderFailed))
	suite.True(confirmation.IsNone())
}

func (suite *BinanceBrokerTestSuite) TestPlaceOrder_InvalidRequests() {
	tests := []struct {
		name  string
		order OrderRequest
	}{
		{name: "missing symbol", order: OrderRequest{Quantity: 1, Side: types.ActionBuy, Type: types.OrderTypeMarket}},
		{name: "zero quantity", order: OrderRequest{Symbol: "AAPL", Side: types.ActionBuy, Type: types.OrderTypeMarket}},
		{name: "unknown side", order: OrderRequest{Symbol: "AAPL", Quantity: 1, Side: "HOLD", Type: types.OrderTypeMarket}},
		{name: "unknown type", order: OrderRequest{Symbol: "AAPL", Quantity: 1, Side: types.ActionBuy, Type: "stop"}},
		{name: "limit without price", order: OrderRequest{Symbol: "AAPL", Quantity: 1, Side: types.ActionBuy, Type: types.OrderTypeLimit}},
		{name: "below precision", order: OrderRequest{Symbol: "AAPL", Quantity: 0.000000001, Side: types.ActionBuy, Type: types.OrderTypeMarket}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.broker.PlaceOrder(context.Background(), tc.order)
			suite.Error(err)
		})
	}

	suite.Zero(suite.client.createOrderService.calls)
}

func (suite *BinanceBrokerTestSuite) TestQuoteBalance() {
	suite.client.getAccountService.account = &binance.Account{Balances: []binance.Balance{
		{Asset: "BTC", Free: "0.5"},
		{Asset: "USDT", Free: "1500.25", Locked: "10"},
	}}

	balance, err := suite.broker.QuoteBalance(context.Background())
	suite.Require().NoError(err)
	suite.Equal(1500.25, balance)

	suite.client.getAccountService.err = errors.New("timeout")
	_, err = suite.broker.QuoteBalance(context.Background())
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeOrderFailed))
}
