package service

import (
	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/ledger"
)

type ILedgerService interface {
	Stock(productId string) (*dto.StockResponse, error)
	StockLevels() map[string]int
}

type ledgerService struct {
	stockLedger *ledger.Ledger
}

func NewLedgerService(stockLedger *ledger.Ledger) ILedgerService {
	return &ledgerService{stockLedger: stockLedger}
}

func (s *ledgerService) Stock(productId string) (*dto.StockResponse, error) {
	available, err := s.stockLedger.Peek(productId)
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{ProductId: productId, Stock: available}, nil
}

func (s *ledgerService) StockLevels() map[string]int {
	return s.stockLedger.Snapshot()
}
