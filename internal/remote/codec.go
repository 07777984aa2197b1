// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// This file implements the binary wire codec. Messages are encoded with
// protowire directly, without generated code, because the schema is three
// small messages and the codec must stay byte-for-byte deterministic.
//
// WIRE MESSAGES:
//   - ActionRequest: the target and region of one dispatched action
//   - CounterQuery: the target whose counter is read, with a detail flag
//   - CounterReply: an Account with id, display name and counter value
//
// Unknown fields in replies are skipped, so the remote can add fields
// without breaking decoding. When a Sealer is configured, request messages
// are sealed after encoding; replies are never sealed.
package remote

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// CounterInfo is the decoded answer to a counter query. AccountID and Name
// are zero when the reply leaves them out.
type CounterInfo struct {
	Count     int64
	AccountID uint64
	Name      string
}

// Codec encodes request payloads and decodes counter responses. Encoding
// must be deterministic: equal inputs produce equal bytes.
type Codec interface {
	EncodeAction(target uint64, region string) ([]byte, error)
	EncodeCounterQuery(target uint64) ([]byte, error)
	DecodeCounter(body []byte) (CounterInfo, error)
}

// ErrNoCounter is returned when a counter response lacks the count field.
var ErrNoCounter = errors.New("response carries no counter")

// Protobuf field numbers of the wire messages.
//
//	ActionRequest  { uint64 target = 1; string region = 2; }
//	CounterQuery   { uint64 target = 1; uint32 detail = 2; }
//	CounterReply   { Account account = 1; }
//	Account        { uint64 id = 1; string name = 2; int64 count = 3; }
const (
	fieldTarget  protowire.Number = 1
	fieldRegion  protowire.Number = 2
	fieldDetail  protowire.Number = 2
	fieldAccount protowire.Number = 1
	fieldID      protowire.Number = 1
	fieldName    protowire.Number = 2
	fieldCount   protowire.Number = 3
)

// ProtoCodec encodes the protobuf wire messages by hand with protowire,
// optionally sealing request payloads.
type ProtoCodec struct {
	sealer *Sealer
}

// NewProtoCodec creates a codec. A nil sealer sends payloads in the clear.
func NewProtoCodec(sealer *Sealer) *ProtoCodec {
	return &ProtoCodec{sealer: sealer}
}

// EncodeAction encodes an ActionRequest.
func (c *ProtoCodec) EncodeAction(target uint64, region string) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldTarget, protowire.VarintType)
	b = protowire.AppendVarint(b, target)
	b = protowire.AppendTag(b, fieldRegion, protowire.BytesType)
	b = protowire.AppendString(b, region)
	return c.seal(b), nil
}

// EncodeCounterQuery encodes a CounterQuery asking for account detail.
func (c *ProtoCodec) EncodeCounterQuery(target uint64) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldTarget, protowire.VarintType)
	b = protowire.AppendVarint(b, target)
	b = protowire.AppendTag(b, fieldDetail, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	return c.seal(b), nil
}

// DecodeCounter decodes a CounterReply. Responses are never sealed. Unknown
// fields are skipped.
func (c *ProtoCodec) DecodeCounter(body []byte) (CounterInfo, error) {
	var account []byte
	found := false
	err := walkFields(body, func(num protowire.Number, typ protowire.Type, value []byte, _ uint64) error {
		if num == fieldAccount && typ == protowire.BytesType {
			account, found = value, true
		}
		return nil
	})
	if err != nil {
		return CounterInfo{}, fmt.Errorf("decode counter reply: %w", err)
	}
	if !found {
		return CounterInfo{}, ErrNoCounter
	}

	var info CounterInfo
	hasCount := false
	err = walkFields(account, func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error {
		switch {
		case num == fieldID && typ == protowire.VarintType:
			info.AccountID = v
		case num == fieldName && typ == protowire.BytesType:
			info.Name = string(value)
		case num == fieldCount && typ == protowire.VarintType:
			info.Count = int64(v)
			hasCount = true
		}
		return nil
	})
	if err != nil {
		return CounterInfo{}, fmt.Errorf("decode account: %w", err)
	}
	if !hasCount {
		return CounterInfo{}, ErrNoCounter
	}
	return info, nil
}

func (c *ProtoCodec) seal(b []byte) []byte {
	if c.sealer == nil {
		return b
	}
	return c.sealer.Seal(b)
}

// walkFields calls fn for every top level field of a message. Varint values
// are passed in v, length delimited values in value.
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, value []byte, v uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			value []byte
			v     uint64
		)
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			value, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, typ, value, v); err != nil {
			return err
		}
	}
	return nil
}
