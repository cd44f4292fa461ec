package export

import (
	"fmt"
	"image"

	"MineVision/internal/blocks"
	"MineVision/internal/obj"
	"MineVision/shared/mapdata"
	"MineVision/shared/util"
)

// Bounds delimita a região exportada em coordenadas de bloco.
// X e Z são half-open (Max exclusivo); Y idem.
type Bounds struct {
	MinX, MaxX int32
	MinZ, MaxZ int32
	MinY, MaxY int32
}

// BoundsFromStore deriva os limites de export dos limites populados do
// store. Retorna ok=false se o mundo está vazio.
func BoundsFromStore(s *mapdata.WorldStore) (Bounds, bool) {
	rect := s.BoundsXZ()
	minY, maxY, ok := s.BoundsY()
	if !ok || rect.Empty() {
		return Bounds{}, false
	}
	return Bounds{
		MinX: int32(rect.Min.X) * util.ChunkSize,
		MaxX: int32(rect.Max.X) * util.ChunkSize,
		MinZ: int32(rect.Min.Y) * util.ChunkSize,
		MaxZ: int32(rect.Max.Y) * util.ChunkSize,
		MinY: minY,
		MaxY: maxY + 1,
	}, true
}

// Intersect recorta os limites contra outro retângulo (usado para limitar
// o export a uma sub-região pedida pelo usuário).
func (b Bounds) Intersect(other Bounds) Bounds {
	r := image.Rect(int(b.MinX), int(b.MinZ), int(b.MaxX), int(b.MaxZ)).
		Intersect(image.Rect(int(other.MinX), int(other.MinZ), int(other.MaxX), int(other.MaxZ)))
	return Bounds{
		MinX: int32(r.Min.X), MaxX: int32(r.Max.X),
		MinZ: int32(r.Min.Y), MaxZ: int32(r.Max.Y),
		MinY: util.Max(b.MinY, other.MinY),
		MaxY: util.Min(b.MaxY, other.MaxY),
	}
}

// Empty diz se a região não contém nenhum bloco.
func (b Bounds) Empty() bool {
	return b.MinX >= b.MaxX || b.MinZ >= b.MaxZ || b.MinY >= b.MaxY
}

// worldAdapter adapta o WorldStore à interface de leitura das receitas,
// convertendo o metadado cru no tipo do pacote blocks.
type worldAdapter struct {
	store *mapdata.WorldStore
}

func (w worldAdapter) GetBlockID(x, y, z int32) uint16 { return w.store.GetBlockID(x, y, z) }
func (w worldAdapter) GetBiome(x, z int32) int32       { return w.store.GetBiome(x, z) }

func (w worldAdapter) GetBlockData(x, y, z int32) blocks.BlockData {
	return blocks.BlockData(w.store.GetBlockData(x, y, z))
}

// ChunkScanner percorre uma coluna de chunk emitindo a geometria de cada
// bloco não-ar para um FaceSink.
type ChunkScanner struct {
	World    blocks.WorldReader
	Registry *blocks.Registry
	Bounds   Bounds
}

// NewChunkScanner cria um scanner sobre o store com os limites dados.
func NewChunkScanner(store *mapdata.WorldStore, registry *blocks.Registry, bounds Bounds) *ChunkScanner {
	return &ChunkScanner{
		World:    worldAdapter{store: store},
		Registry: registry,
		Bounds:   bounds,
	}
}

// Scan varre o chunk (chunkX, chunkZ) recortado contra os limites de
// export e emite as faces no sink. A ordem é fixa: z, depois x, depois y
// crescentes, para saída determinística. Retorna quantos blocos geraram
// geometria.
//
// Um panic em uma receita é contido aqui e vira erro: um bloco malformado
// não derruba o export inteiro.
func (s *ChunkScanner) Scan(sink obj.FaceSink, chunkX, chunkZ int32) (blockCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic na varredura do chunk (%d, %d): %v", chunkX, chunkZ, r)
		}
	}()

	// Recorta a extensão 16x16 do chunk contra os limites de export.
	x0 := util.Max(chunkX*util.ChunkSize, s.Bounds.MinX)
	x1 := util.Min(chunkX*util.ChunkSize+util.ChunkSize, s.Bounds.MaxX)
	z0 := util.Max(chunkZ*util.ChunkSize, s.Bounds.MinZ)
	z1 := util.Min(chunkZ*util.ChunkSize+util.ChunkSize, s.Bounds.MaxZ)
	y0 := util.Max(s.Bounds.MinY, 0)
	y1 := util.Min(s.Bounds.MaxY, util.ChunkHeight)

	if x0 >= x1 || z0 >= z1 || y0 >= y1 {
		return 0, nil
	}

	for z := z0; z < z1; z++ {
		for x := x0; x < x1; x++ {
			for y := y0; y < y1; y++ {
				id := s.World.GetBlockID(x, y, z)
				if id == 0 {
					continue
				}

				info := s.Registry.Resolve(id)
				if info.Model == nil {
					continue
				}

				data := s.World.GetBlockData(x, y, z)
				biome := s.World.GetBiome(x, z)
				info.Model.Generate(sink, s.World, x, y, z, data, biome)
				blockCount++
			}
		}
	}
	return blockCount, nil
}
