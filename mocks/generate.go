package mocks

//go:generate mockgen -destination=./mock_price_source.go -package=mocks github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider PriceSource
//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-stocks/internal/trading/provider Broker
//go:generate mockgen -destination=./mock_ledger.go -package=mocks github.com/rxtech-lab/argo-stocks/internal/store Ledger,LedgerTx
