// Package feed defines the order-life-cycle message types the core
// consumes (spec.md §6) and the readers that produce them: a binary
// frame Decoder for production use, and an in-memory SimReader for tests
// and the feedsim driver.
package feed

import "github.com/marketfeed/orderbook-engine/pkg/bookmodel"

// Kind tags a message's wire frame type.
type Kind uint8

const (
	KindOrderbookClear Kind = iota
	KindAddOrder
	KindModifyOrder
	KindDeleteOrder
	KindAddTrade
)

// Message is any of the five payload types below. Symbol identifies
// which per-instrument book engine the message routes to.
type Message interface {
	Symbol() string
	Kind() Kind
}

// OrderbookClear requests book.Engine.Clear() for its symbol.
type OrderbookClear struct {
	SymbolName string
}

func (m OrderbookClear) Symbol() string { return m.SymbolName }
func (m OrderbookClear) Kind() Kind     { return KindOrderbookClear }

// AddOrder carries the fields of spec.md §6's AddOrder message.
type AddOrder struct {
	SymbolName string
	OrderID    uint64
	Price      bookmodel.Price
	Qty        bookmodel.Qty
	Side       bookmodel.Side
}

func (m AddOrder) Symbol() string { return m.SymbolName }
func (m AddOrder) Kind() Kind     { return KindAddOrder }

// ModifyOrder carries the fields of spec.md §6's ModifyOrder message.
type ModifyOrder struct {
	SymbolName string
	OrderID    uint64
	Price      bookmodel.Price
	Qty        bookmodel.Qty
	Side       bookmodel.Side
}

func (m ModifyOrder) Symbol() string { return m.SymbolName }
func (m ModifyOrder) Kind() Kind     { return KindModifyOrder }

// DeleteOrder carries the fields of spec.md §6's DeleteOrder message.
type DeleteOrder struct {
	SymbolName string
	OrderID    uint64
	Side       bookmodel.Side
}

func (m DeleteOrder) Symbol() string { return m.SymbolName }
func (m DeleteOrder) Kind() Kind     { return KindDeleteOrder }

// AddTrade carries the fields of spec.md §6's AddTrade message.
// TradeTimeNs is nanoseconds since the Unix epoch.
type AddTrade struct {
	SymbolName  string
	OrderID     uint64
	TradeID     uint64
	Price       bookmodel.Price
	Qty         bookmodel.TradeQty
	Side        bookmodel.Side
	TradeTimeNs uint64
}

func (m AddTrade) Symbol() string { return m.SymbolName }
func (m AddTrade) Kind() Kind     { return KindAddTrade }
