package feed

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/marketfeed/orderbook-engine/pkg/bookmodel"
)

// Frame layout (all integers little-endian):
//
//	uint32 frame length (excludes these 4 bytes)
//	uint8  kind
//	uint8  symbol length
//	[]byte symbol
//	...kind-specific fixed-width fields
//
// This is the "binary-frame reader" spec.md §6 treats as an external
// collaborator: framing is entirely this package's concern, never the
// core's.
const (
	addOrderFixedLen    = 8 + 4 + 4 + 1
	modifyOrderFixedLen = 8 + 4 + 4 + 1
	deleteOrderFixedLen = 8 + 1
	addTradeFixedLen    = 8 + 8 + 4 + 8 + 1 + 8
)

// Decoder reads a stream of length-prefixed binary frames and yields one
// Message per well-formed frame. Malformed frames are logged and
// skipped; the decoder never panics on truncated or unknown-tag input.
type Decoder struct {
	r      *bufio.Reader
	logger *log.Logger
}

// NewDecoder wraps r. logger receives one line per skipped malformed
// frame; pass log.Default() if the caller doesn't care to customize it.
func NewDecoder(r io.Reader, logger *log.Logger) *Decoder {
	return &Decoder{r: bufio.NewReader(r), logger: logger}
}

// Next returns the next well-formed message, or an error (typically
// io.EOF) once the stream is exhausted.
func (d *Decoder) Next() (Message, error) {
	for {
		var frameLen uint32
		if err := binary.Read(d.r, binary.LittleEndian, &frameLen); err != nil {
			return nil, err
		}

		buf := make([]byte, frameLen)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return nil, fmt.Errorf("feed: truncated frame body: %w", err)
		}

		msg, err := decodeFrame(buf)
		if err != nil {
			d.logger.Printf("feed: skipping malformed frame: %v", err)
			continue
		}
		return msg, nil
	}
}

func decodeFrame(buf []byte) (Message, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(buf))
	}
	kind := Kind(buf[0])
	symLen := int(buf[1])
	if len(buf) < 2+symLen {
		return nil, fmt.Errorf("truncated symbol field")
	}
	symbol := string(buf[2 : 2+symLen])
	rest := buf[2+symLen:]

	switch kind {
	case KindOrderbookClear:
		return OrderbookClear{SymbolName: symbol}, nil

	case KindAddOrder:
		if len(rest) < addOrderFixedLen {
			return nil, fmt.Errorf("truncated AddOrder frame")
		}
		return AddOrder{
			SymbolName: symbol,
			OrderID:    binary.LittleEndian.Uint64(rest[0:8]),
			Price:      bookmodel.Price(int32(binary.LittleEndian.Uint32(rest[8:12]))),
			Qty:        bookmodel.Qty(binary.LittleEndian.Uint32(rest[12:16])),
			Side:       bookmodel.Side(rest[16]),
		}, nil

	case KindModifyOrder:
		if len(rest) < modifyOrderFixedLen {
			return nil, fmt.Errorf("truncated ModifyOrder frame")
		}
		return ModifyOrder{
			SymbolName: symbol,
			OrderID:    binary.LittleEndian.Uint64(rest[0:8]),
			Price:      bookmodel.Price(int32(binary.LittleEndian.Uint32(rest[8:12]))),
			Qty:        bookmodel.Qty(binary.LittleEndian.Uint32(rest[12:16])),
			Side:       bookmodel.Side(rest[16]),
		}, nil

	case KindDeleteOrder:
		if len(rest) < deleteOrderFixedLen {
			return nil, fmt.Errorf("truncated DeleteOrder frame")
		}
		return DeleteOrder{
			SymbolName: symbol,
			OrderID:    binary.LittleEndian.Uint64(rest[0:8]),
			Side:       bookmodel.Side(rest[8]),
		}, nil

	case KindAddTrade:
		if len(rest) < addTradeFixedLen {
			return nil, fmt.Errorf("truncated AddTrade frame")
		}
		return AddTrade{
			SymbolName:  symbol,
			OrderID:     binary.LittleEndian.Uint64(rest[0:8]),
			TradeID:     binary.LittleEndian.Uint64(rest[8:16]),
			Price:       bookmodel.Price(int32(binary.LittleEndian.Uint32(rest[16:20]))),
			Qty:         bookmodel.TradeQty(binary.LittleEndian.Uint64(rest[20:28])),
			Side:        bookmodel.Side(rest[28]),
			TradeTimeNs: binary.LittleEndian.Uint64(rest[29:37]),
		}, nil

	default:
		return nil, fmt.Errorf("unknown message kind %d", kind)
	}
}
