// Package mvnet define o protocolo binário entre o servidor de mundos e o
// exportador. As mensagens seguem o formato de wire do protobuf
// (tag/varint/length-delimited) via encoding/protowire, sem arquivos .proto
// gerados.
package mvnet

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// EnvelopeType identifica a mensagem embrulhada em um Envelope.
type EnvelopeType int32

const (
	TypeUnknown        EnvelopeType = 0
	TypeMapInfoRequest EnvelopeType = 1
	TypeMapInfo        EnvelopeType = 2
	TypeRangeRequest   EnvelopeType = 3
	TypeChunkData      EnvelopeType = 4
	TypeRangeDone      EnvelopeType = 5
)

// Envelope embrulha toda mensagem trocada no websocket.
type Envelope struct {
	Type    EnvelopeType
	Payload []byte
}

func (m *Envelope) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b
}

func (m *Envelope) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v uint64, raw []byte) {
		switch num {
		case 1:
			m.Type = EnvelopeType(v)
		case 2:
			m.Payload = raw
		}
	})
}

// MapInfo descreve os limites populados do mundo servido.
type MapInfo struct {
	WorldName string
	MinChunkX int32
	MinChunkZ int32
	MaxChunkX int32 // exclusivo
	MaxChunkZ int32 // exclusivo
	MinY      int32
	MaxY      int32
}

func (m *MapInfo) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, m.WorldName)
	b = appendSint(b, 2, m.MinChunkX)
	b = appendSint(b, 3, m.MinChunkZ)
	b = appendSint(b, 4, m.MaxChunkX)
	b = appendSint(b, 5, m.MaxChunkZ)
	b = appendSint(b, 6, m.MinY)
	b = appendSint(b, 7, m.MaxY)
	return b
}

func (m *MapInfo) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v uint64, raw []byte) {
		switch num {
		case 1:
			m.WorldName = string(raw)
		case 2:
			m.MinChunkX = decodeSint(v)
		case 3:
			m.MinChunkZ = decodeSint(v)
		case 4:
			m.MaxChunkX = decodeSint(v)
		case 5:
			m.MaxChunkZ = decodeSint(v)
		case 6:
			m.MinY = decodeSint(v)
		case 7:
			m.MaxY = decodeSint(v)
		}
	})
}

// RangeRequest pede ao servidor todas as colunas de um retângulo de chunks
// (Max exclusivo). O servidor responde com uma sequência de ChunkData e
// fecha com RangeDone.
type RangeRequest struct {
	MinChunkX int32
	MinChunkZ int32
	MaxChunkX int32
	MaxChunkZ int32
}

func (m *RangeRequest) Marshal() []byte {
	var b []byte
	b = appendSint(b, 1, m.MinChunkX)
	b = appendSint(b, 2, m.MinChunkZ)
	b = appendSint(b, 3, m.MaxChunkX)
	b = appendSint(b, 4, m.MaxChunkZ)
	return b
}

func (m *RangeRequest) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v uint64, raw []byte) {
		switch num {
		case 1:
			m.MinChunkX = decodeSint(v)
		case 2:
			m.MinChunkZ = decodeSint(v)
		case 3:
			m.MaxChunkX = decodeSint(v)
		case 4:
			m.MaxChunkZ = decodeSint(v)
		}
	})
}

// ChunkData carrega uma coluna de chunk. Blob é o mesmo formato que vai
// para o SQLite (GOB + zstd); Empty indica coluna só de ar, sem Blob.
type ChunkData struct {
	ChunkX int32
	ChunkZ int32
	Empty  bool
	MTime  int64
	Blob   []byte
}

func (m *ChunkData) Marshal() []byte {
	var b []byte
	b = appendSint(b, 1, m.ChunkX)
	b = appendSint(b, 2, m.ChunkZ)
	if m.Empty {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.MTime))
	if len(m.Blob) > 0 {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Blob)
	}
	return b
}

func (m *ChunkData) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v uint64, raw []byte) {
		switch num {
		case 1:
			m.ChunkX = decodeSint(v)
		case 2:
			m.ChunkZ = decodeSint(v)
		case 3:
			m.Empty = v != 0
		case 4:
			m.MTime = int64(v)
		case 5:
			m.Blob = raw
		}
	})
}

// RangeDone encerra a resposta de um RangeRequest.
type RangeDone struct {
	Count int32 // colunas enviadas
}

func (m *RangeDone) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Count))
	return b
}

func (m *RangeDone) Unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v uint64, raw []byte) {
		if num == 1 {
			m.Count = int32(v)
		}
	})
}

// appendSint codifica um inteiro com sinal em zigzag (coordenadas de chunk
// podem ser negativas).
func appendSint(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func decodeSint(v uint64) int32 {
	return int32(protowire.DecodeZigZag(v))
}

// walkFields percorre os campos de uma mensagem chamando visit com o
// número do campo e o valor varint ou bytes (conforme o wire type).
// Campos desconhecidos são pulados, como manda o formato.
func walkFields(data []byte, visit func(num protowire.Number, v uint64, raw []byte)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("mvnet: tag inválida: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("mvnet: varint inválido no campo %d: %w", num, protowire.ParseError(n))
			}
			visit(num, v, nil)
			data = data[n:]
		case protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("mvnet: bytes inválidos no campo %d: %w", num, protowire.ParseError(n))
			}
			visit(num, 0, raw)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("mvnet: campo %d com wire type %d inválido: %w", num, typ, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}
