package contracts

import "fmt"

// StockSnapshot is one equity's market state at fetch time.
// Built only by the discovery finder from raw ranking rows; immutable
// once built.
type StockSnapshot struct {
	Code         string   // exchange code, e.g. "600519"
	Name         string   // display name
	Price        float64  // last price, CNY
	ChangePct    float64  // percentage change on the day
	Volume       float64  // traded volume, lots
	Amount       float64  // traded value, CNY
	TurnoverRate float64  // percent of float traded
	MarketCap    float64  // total market capitalization, CNY
	ListDays     int      // days since listing; 0 means unknown
	PERatio      *float64 // dynamic P/E, nil when unavailable
}

// Validate checks the snapshot invariants.
func (s StockSnapshot) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("stock code must not be empty")
	}
	if s.Name == "" {
		return fmt.Errorf("stock name must not be empty")
	}
	if s.Price < 0 {
		return fmt.Errorf("price must not be negative: %v", s.Price)
	}
	if s.Volume < 0 {
		return fmt.Errorf("volume must not be negative: %v", s.Volume)
	}
	if s.Amount < 0 {
		return fmt.Errorf("traded value must not be negative: %v", s.Amount)
	}
	if s.MarketCap < 0 {
		return fmt.Errorf("market cap must not be negative: %v", s.MarketCap)
	}
	if s.ListDays < 0 {
		return fmt.Errorf("list days must not be negative: %d", s.ListDays)
	}
	return nil
}
