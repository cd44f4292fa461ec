package mapdata

import (
	"image"
	"log"
	"sync"

	"MineVision/shared/util"

	"gorm.io/gorm"
)

// WorldStore gerencia o armazenamento de chunks do mundo.
// Pode representar o mundo inteiro ou apenas a região carregada para export.
type WorldStore struct {
	Mu sync.RWMutex

	// dbMu serializa escritas no banco SQLite (impede "database is locked")
	dbMu sync.Mutex

	// Chunks armazena as colunas do mundo (16x256x16)
	Chunks map[util.ChunkCoord]*Chunk

	// Limites populados, em coordenadas de chunk. Half-open como todo
	// image.Rectangle: Max é exclusivo. Vazio enquanto nenhum chunk
	// com blocos foi armazenado.
	boundsXZ image.Rectangle

	// Faixa vertical populada, em coordenadas de bloco.
	minY, maxY int32
	hasBounds  bool

	// DB é a conexão com o banco SQLite (GORM)
	DB *gorm.DB
}

// Chunk representa uma coluna 16x256x16 de blocos.
type Chunk struct {
	Coord util.ChunkCoord

	// Blocks guarda os ids em ordem (z*16+x)*256+y.
	Blocks []uint16
	// Data guarda o metadado de 4 bits de cada bloco, um byte por bloco,
	// no mesmo índice de Blocks.
	Data []byte
	// Biomes guarda o bioma por coluna (z*16+x).
	Biomes []byte

	MTime   int64 // Contador de modificações / versão
	IsDirty bool  // Indica que o chunk foi alterado e precisa salvar
	IsEmpty bool  // Indica que a coluna é só ar
}

// NewChunk aloca uma coluna vazia (tudo ar).
func NewChunk(coord util.ChunkCoord) *Chunk {
	return &Chunk{
		Coord:  coord,
		Blocks: make([]uint16, util.ChunkSize*util.ChunkSize*util.ChunkHeight),
		Data:   make([]byte, util.ChunkSize*util.ChunkSize*util.ChunkHeight),
		Biomes: make([]byte, util.ChunkSize*util.ChunkSize),
	}
}

// SetBlock grava id e metadado em coordenadas locais da coluna.
func (c *Chunk) SetBlock(lx, y, lz int32, id uint16, data byte) {
	i := blockIndex(lx, y, lz)
	c.Blocks[i] = id
	c.Data[i] = data
}

// blockIndex converte coordenadas locais no índice linear da coluna.
func blockIndex(lx, y, lz int32) int {
	return int((lz*util.ChunkSize+lx))*util.ChunkHeight + int(y)
}

// NewWorldStore cria um novo repositório de dados do mundo.
func NewWorldStore() *WorldStore {
	return &WorldStore{
		Chunks: make(map[util.ChunkCoord]*Chunk),
	}
}

// GetChunk retorna um chunk de forma segura (thread-safe).
func (s *WorldStore) GetChunk(coord util.ChunkCoord) (*Chunk, bool) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	c, ok := s.Chunks[coord]
	return c, ok
}

// StoreChunk registra (ou substitui) uma coluna e atualiza os limites
// populados. Colunas vazias são registradas mas não expandem os limites.
func (s *WorldStore) StoreChunk(c *Chunk) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.Chunks[c.Coord] = c
	if c.IsEmpty {
		return
	}

	minY, maxY, populated := chunkYRange(c)
	if !populated {
		c.IsEmpty = true
		return
	}

	cell := image.Rect(int(c.Coord.X), int(c.Coord.Z), int(c.Coord.X)+1, int(c.Coord.Z)+1)
	if !s.hasBounds {
		s.boundsXZ = cell
		s.minY, s.maxY = minY, maxY
		s.hasBounds = true
		return
	}
	s.boundsXZ = s.boundsXZ.Union(cell)
	s.minY = util.Min(s.minY, minY)
	s.maxY = util.Max(s.maxY, maxY)
}

// chunkYRange varre a coluna e devolve a faixa vertical com blocos não-ar.
func chunkYRange(c *Chunk) (minY, maxY int32, populated bool) {
	minY, maxY = util.ChunkHeight, -1
	for i, id := range c.Blocks {
		if id == 0 {
			continue
		}
		y := int32(i % util.ChunkHeight)
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	return minY, maxY, maxY >= 0
}

// GetBlockID retorna o id do bloco em coordenadas globais. Fora das
// colunas carregadas (ou da faixa vertical) devolve 0 (ar).
func (s *WorldStore) GetBlockID(x, y, z int32) uint16 {
	if y < 0 || y >= util.ChunkHeight {
		return 0
	}
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	chunk, ok := s.Chunks[util.BlockToChunk(x, z)]
	if !ok {
		return 0
	}
	lx, lz := util.LocalCoord(x), util.LocalCoord(z)
	return chunk.Blocks[blockIndex(lx, y, lz)]
}

// GetBlockData retorna o metadado do bloco em coordenadas globais.
func (s *WorldStore) GetBlockData(x, y, z int32) uint16 {
	if y < 0 || y >= util.ChunkHeight {
		return 0
	}
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	chunk, ok := s.Chunks[util.BlockToChunk(x, z)]
	if !ok {
		return 0
	}
	lx, lz := util.LocalCoord(x), util.LocalCoord(z)
	return uint16(chunk.Data[blockIndex(lx, y, lz)])
}

// GetBiome retorna o bioma da coluna (x, z). Fora do mundo carregado
// devolve 0 (oceano).
func (s *WorldStore) GetBiome(x, z int32) int32 {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	chunk, ok := s.Chunks[util.BlockToChunk(x, z)]
	if !ok {
		return 0
	}
	lx, lz := util.LocalCoord(x), util.LocalCoord(z)
	return int32(chunk.Biomes[lz*util.ChunkSize+lx])
}

// BoundsXZ retorna o retângulo de chunks populados no plano horizontal
// (Max exclusivo). Retângulo vazio se nada foi armazenado.
func (s *WorldStore) BoundsXZ() image.Rectangle {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	if !s.hasBounds {
		return image.Rectangle{}
	}
	return s.boundsXZ
}

// BoundsY retorna a faixa vertical populada em coordenadas de bloco
// (inclusiva nas duas pontas). ok=false se nada foi armazenado.
func (s *WorldStore) BoundsY() (minY, maxY int32, ok bool) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.minY, s.maxY, s.hasBounds
}

// ChunkCount retorna quantas colunas estão carregadas.
func (s *WorldStore) ChunkCount() int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return len(s.Chunks)
}

// HasData verifica se o banco já possui algum chunk salvo.
func (s *WorldStore) HasData() bool {
	if s.DB == nil {
		return false
	}
	var count int64
	s.DB.Model(&ChunkModel{}).Count(&count)
	return count > 0
}

// Close fecha a conexão com o banco de dados SQLite.
func (s *WorldStore) Close() {
	if s.DB != nil {
		sqlDB, _ := s.DB.DB()
		if sqlDB != nil {
			log.Println("[Persistence] Fechando banco de dados SQLite...")
			sqlDB.Close()
		}
	}
}
