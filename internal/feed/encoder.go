package feed

import (
	"bytes"
	"encoding/binary"
)

// Encode serialises msg into the frame format Decoder reads, including
// the length prefix. It exists mainly for tests and for anything writing
// a recorded feed out to disk; production traffic is expected to arrive
// already framed by the upstream producer.
func Encode(msg Message) []byte {
	var body bytes.Buffer
	body.WriteByte(byte(msg.Kind()))
	writeSymbol(&body, msg.Symbol())

	switch m := msg.(type) {
	case OrderbookClear:
		// no additional fields
	case AddOrder:
		writeUint64(&body, m.OrderID)
		writeInt32(&body, int32(m.Price))
		writeUint32(&body, uint32(m.Qty))
		body.WriteByte(byte(m.Side))
	case ModifyOrder:
		writeUint64(&body, m.OrderID)
		writeInt32(&body, int32(m.Price))
		writeUint32(&body, uint32(m.Qty))
		body.WriteByte(byte(m.Side))
	case DeleteOrder:
		writeUint64(&body, m.OrderID)
		body.WriteByte(byte(m.Side))
	case AddTrade:
		writeUint64(&body, m.OrderID)
		writeUint64(&body, m.TradeID)
		writeInt32(&body, int32(m.Price))
		writeUint64(&body, uint64(m.Qty))
		body.WriteByte(byte(m.Side))
		writeUint64(&body, m.TradeTimeNs)
	}

	var framed bytes.Buffer
	writeUint32(&framed, uint32(body.Len()))
	framed.Write(body.Bytes())
	return framed.Bytes()
}

func writeSymbol(buf *bytes.Buffer, symbol string) {
	buf.WriteByte(byte(len(symbol)))
	buf.WriteString(symbol)
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeInt32(buf *bytes.Buffer, v int32) {
	writeUint32(buf, uint32(v))
}
