package mapdata

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"MineVision/shared/util"

	"github.com/klauspost/compress/zstd"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChunkModel representa o esquema do banco de dados para uma coluna de chunk
type ChunkModel struct {
	ID        string `gorm:"primaryKey"` // Coordenada formatada "X_Z"
	X, Z      int32  `gorm:"index:idx_pos"`
	Blob      []byte // Coluna serializada em GOB e comprimida com zstd
	MTime     int64  // Versão/Timestamp
	UpdatedAt time.Time
}

// WorldMetadata armazena informações globais do mundo no banco
type WorldMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// MaterialModel armazena a cor resolvida de um material persistida no banco
type MaterialModel struct {
	Name    string `gorm:"primaryKey"`
	R, G, B uint8
}

const CurrentFormatVersion = 1

// chunkBlob é a forma serializada de uma coluna. Campos exportados para o GOB.
type chunkBlob struct {
	Blocks []uint16
	Data   []byte
	Biomes []byte
}

var (
	zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDec, _ = zstd.NewReader(nil)
)

// OpenInitialize abre (ou cria) o banco de dados SQLite para o mundo e
// roda migrações.
func (s *WorldStore) OpenInitialize(worldName string) error {
	if err := os.MkdirAll("saves", 0755); err != nil {
		return err
	}

	dbPath := filepath.Join("saves", fmt.Sprintf("%s.mv", worldName))

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&ChunkModel{}, &WorldMetadata{}, &MaterialModel{}); err != nil {
		return fmt.Errorf("falha na migração do banco: %w", err)
	}

	s.DB = db

	db.Save(&WorldMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})
	db.Save(&WorldMetadata{Key: "WorldName", Value: worldName})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", dbPath)
	return nil
}

// EncodeChunk serializa e comprime a coluna.
func EncodeChunk(c *Chunk) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(chunkBlob{Blocks: c.Blocks, Data: c.Data, Biomes: c.Biomes}); err != nil {
		return nil, err
	}
	return zstdEnc.EncodeAll(buf.Bytes(), nil), nil
}

// DecodeChunk descomprime e desserializa uma coluna vinda do banco.
func DecodeChunk(coord util.ChunkCoord, blob []byte, mtime int64) (*Chunk, error) {
	raw, err := zstdDec.DecodeAll(blob, nil)
	if err != nil {
		return nil, err
	}

	var cb chunkBlob
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&cb); err != nil {
		return nil, err
	}

	return &Chunk{
		Coord:  coord,
		Blocks: cb.Blocks,
		Data:   cb.Data,
		Biomes: cb.Biomes,
		MTime:  mtime,
	}, nil
}

// SaveChunk salva uma única coluna no banco de dados SQLite.
func (s *WorldStore) SaveChunk(chunk *Chunk) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	blob, err := EncodeChunk(chunk)
	if err != nil {
		log.Printf("[Persistence] ERRO Crítico GOB: %v", err)
		return err
	}

	id := fmt.Sprintf("%d_%d", chunk.Coord.X, chunk.Coord.Z)
	model := ChunkModel{
		ID:    id,
		X:     chunk.Coord.X,
		Z:     chunk.Coord.Z,
		Blob:  blob,
		MTime: chunk.MTime,
	}

	// Upsert (Cria ou Atualiza)
	s.dbMu.Lock()
	err = s.DB.Save(&model).Error
	s.dbMu.Unlock()
	if err != nil {
		log.Printf("[Persistence] ERRO ao salvar chunk %s: %v", id, err)
	} else {
		chunk.IsDirty = false
	}
	return err
}

// LoadChunk tenta carregar uma coluna específica do banco de dados.
func (s *WorldStore) LoadChunk(coord util.ChunkCoord) (*Chunk, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	id := fmt.Sprintf("%d_%d", coord.X, coord.Z)
	var model ChunkModel
	if err := s.DB.First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return DecodeChunk(coord, model.Blob, model.MTime)
}

// SaveAll persiste todas as colunas sujas em memória.
func (s *WorldStore) SaveAll(worldName string) error {
	s.Mu.Lock()
	if s.DB == nil {
		if err := s.OpenInitialize(worldName); err != nil {
			s.Mu.Unlock()
			return err
		}
	}

	// Coleta a lista de colunas sujas para salvar fora do lock
	var dirtyChunks []*Chunk
	for _, chunk := range s.Chunks {
		if chunk.IsDirty {
			dirtyChunks = append(dirtyChunks, chunk)
		}
	}
	s.Mu.Unlock()

	if len(dirtyChunks) == 0 {
		return nil
	}

	log.Printf("[Persistence] Iniciando salvamento em SQLite... (Chunks sujos: %d)", len(dirtyChunks))
	count := 0
	for _, chunk := range dirtyChunks {
		if err := s.SaveChunk(chunk); err == nil {
			count++
		}
	}
	log.Printf("[Persistence] Salvamento concluído: %d chunks persistidos.", count)

	return nil
}

// LoadAll carrega todas as colunas do banco para a memória, recalculando
// os limites populados. Para mundos de export o banco inteiro cabe na RAM.
func (s *WorldStore) LoadAll(worldName string) error {
	if s.DB == nil {
		if err := s.OpenInitialize(worldName); err != nil {
			return err
		}
	}

	var models []ChunkModel
	if err := s.DB.Find(&models).Error; err != nil {
		return err
	}

	for i := range models {
		m := &models[i]
		chunk, err := DecodeChunk(util.NewChunkCoord(m.X, m.Z), m.Blob, m.MTime)
		if err != nil {
			log.Printf("[Persistence] Chunk %s corrompido, ignorando: %v", m.ID, err)
			continue
		}
		s.StoreChunk(chunk)
	}

	log.Printf("[Persistence] %d colunas carregadas do SQLite.", len(models))
	return nil
}
