package mapdata

import (
	"image"
	"testing"

	"MineVision/shared/util"
)

func TestBlockLookups(t *testing.T) {
	store := NewWorldStore()

	chunk := NewChunk(util.NewChunkCoord(-1, 0))
	chunk.SetBlock(15, 64, 3, 1, 5)
	chunk.Biomes[3*util.ChunkSize+15] = 7
	store.StoreChunk(chunk)

	// Bloco local (15, 64, 3) do chunk (-1, 0) fica no mundo em x=-1, z=3.
	if got := store.GetBlockID(-1, 64, 3); got != 1 {
		t.Errorf("GetBlockID = %d, esperava 1", got)
	}
	if got := store.GetBlockData(-1, 64, 3); got != 5 {
		t.Errorf("GetBlockData = %d, esperava 5", got)
	}
	if got := store.GetBiome(-1, 3); got != 7 {
		t.Errorf("GetBiome = %d, esperava 7", got)
	}

	// Fora das colunas carregadas e fora da faixa vertical: ar.
	if got := store.GetBlockID(100, 64, 100); got != 0 {
		t.Errorf("coluna inexistente: GetBlockID = %d, esperava 0", got)
	}
	if got := store.GetBlockID(-1, -1, 3); got != 0 {
		t.Errorf("y negativo: GetBlockID = %d, esperava 0", got)
	}
	if got := store.GetBlockID(-1, 256, 3); got != 0 {
		t.Errorf("y acima do mundo: GetBlockID = %d, esperava 0", got)
	}
}

func TestPopulatedBounds(t *testing.T) {
	store := NewWorldStore()

	if !store.BoundsXZ().Empty() {
		t.Error("store vazio deveria ter limites vazios")
	}

	a := NewChunk(util.NewChunkCoord(-2, 1))
	a.SetBlock(0, 10, 0, 1, 0)
	store.StoreChunk(a)

	b := NewChunk(util.NewChunkCoord(3, -1))
	b.SetBlock(5, 90, 5, 1, 0)
	store.StoreChunk(b)

	// Coluna só de ar não expande os limites.
	store.StoreChunk(NewChunk(util.NewChunkCoord(50, 50)))

	want := image.Rect(-2, -1, 4, 2)
	if got := store.BoundsXZ(); got != want {
		t.Errorf("BoundsXZ = %v, esperava %v", got, want)
	}

	minY, maxY, ok := store.BoundsY()
	if !ok || minY != 10 || maxY != 90 {
		t.Errorf("BoundsY = (%d, %d, %v), esperava (10, 90, true)", minY, maxY, ok)
	}
}

func TestEmptyChunkDetection(t *testing.T) {
	store := NewWorldStore()
	empty := NewChunk(util.NewChunkCoord(0, 0))
	store.StoreChunk(empty)

	if !empty.IsEmpty {
		t.Error("coluna sem blocos deveria ser marcada vazia")
	}

	c, ok := store.GetChunk(util.NewChunkCoord(0, 0))
	if !ok || !c.IsEmpty {
		t.Error("coluna vazia deveria continuar registrada no store")
	}
}

func TestPersistenceRoundtrip(t *testing.T) {
	chdirTemp(t)

	store := NewWorldStore()
	chunk := NewChunk(util.NewChunkCoord(2, -3))
	chunk.SetBlock(1, 70, 1, 17, 0)
	chunk.SetBlock(1, 71, 1, 18, 0)
	chunk.Biomes[0] = 4
	chunk.MTime = 9
	chunk.IsDirty = true
	store.StoreChunk(chunk)

	if err := store.SaveAll("roundtrip"); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if chunk.IsDirty {
		t.Error("chunk salvo deveria perder a flag IsDirty")
	}
	store.Close()

	loaded := NewWorldStore()
	if err := loaded.LoadAll("roundtrip"); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	defer loaded.Close()

	if got := loaded.GetBlockID(2*16+1, 70, -3*16+1); got != 17 {
		t.Errorf("bloco recarregado = %d, esperava 17", got)
	}
	if got := loaded.GetBiome(2*16, -3*16); got != 4 {
		t.Errorf("bioma recarregado = %d, esperava 4", got)
	}

	c, ok := loaded.GetChunk(util.NewChunkCoord(2, -3))
	if !ok || c.MTime != 9 {
		t.Errorf("MTime recarregado errado: %+v", c)
	}
}
