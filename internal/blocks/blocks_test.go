package blocks

import (
	"testing"

	"MineVision/internal/obj"
)

// fakeWorld é um WorldReader mínimo para os testes de receita.
type fakeWorld struct {
	ids  map[[3]int32]uint16
	data map[[3]int32]BlockData
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		ids:  make(map[[3]int32]uint16),
		data: make(map[[3]int32]BlockData),
	}
}

func (w *fakeWorld) set(x, y, z int32, id uint16, data BlockData) {
	w.ids[[3]int32{x, y, z}] = id
	w.data[[3]int32{x, y, z}] = data
}

func (w *fakeWorld) GetBlockID(x, y, z int32) uint16     { return w.ids[[3]int32{x, y, z}] }
func (w *fakeWorld) GetBlockData(x, y, z int32) BlockData { return w.data[[3]int32{x, y, z}] }
func (w *fakeWorld) GetBiome(x, z int32) int32           { return 0 }

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistryDefaults(t *testing.T) {
	r := mustRegistry(t)

	stone := r.Get(1)
	if stone == nil || stone.Name != "stone" {
		t.Fatalf("Get(1) = %+v, esperava stone", stone)
	}
	if !r.IsOpaque(1) {
		t.Error("stone deve ser opaco")
	}
	if r.IsOpaque(0) {
		t.Error("ar não pode ser opaco")
	}
	if r.IsOpaque(9) {
		t.Error("água não pode ser opaca")
	}
}

func TestResolveUnknownBlock(t *testing.T) {
	r := mustRegistry(t)

	info := r.Resolve(999)
	if info.Name != "block_999" {
		t.Errorf("Name = %q, esperava o material sintetizado block_999", info.Name)
	}
	if info.Model == nil {
		t.Fatal("bloco desconhecido deve degradar para o cubo padrão")
	}

	world := newFakeWorld()
	world.set(0, 0, 0, 999, 0)
	buf := obj.NewQuadBuffer()
	info.Model.Generate(buf, world, 0, 0, 0, 0, 0)
	if buf.Len() != 6 {
		t.Errorf("cubo isolado deve emitir 6 faces, veio %d", buf.Len())
	}
}

func TestCubeCulling(t *testing.T) {
	r := mustRegistry(t)
	world := newFakeWorld()
	world.set(0, 0, 0, 1, 0)
	world.set(0, 1, 0, 1, 0) // vizinho opaco em cima

	buf := obj.NewQuadBuffer()
	r.Get(1).Model.Generate(buf, world, 0, 0, 0, 0, 0)
	if buf.Len() != 5 {
		t.Errorf("face contra vizinho opaco deveria sofrer cull: %d faces, esperava 5", buf.Len())
	}

	// Vizinho não-opaco (água) não faz cull.
	world.set(0, 1, 0, 9, 0)
	buf = obj.NewQuadBuffer()
	r.Get(1).Model.Generate(buf, world, 0, 0, 0, 0, 0)
	if buf.Len() != 6 {
		t.Errorf("vizinho não-opaco não pode fazer cull: %d faces, esperava 6", buf.Len())
	}
}

func TestSlabHalves(t *testing.T) {
	r := mustRegistry(t)
	slab := r.Get(44).Model

	tests := []struct {
		name  string
		data  BlockData
		below uint16
		above uint16
		want  int
	}{
		{"inferior isolada", 0, 0, 0, 6},
		{"inferior sobre opaco", 0, 1, 0, 5},
		{"superior isolada", 8, 0, 0, 6},
		{"superior sob opaco", 8, 0, 1, 5},
	}

	for _, tt := range tests {
		world := newFakeWorld()
		world.set(0, 0, 0, 44, tt.data)
		world.set(0, -1, 0, tt.below, 0)
		world.set(0, 1, 0, tt.above, 0)

		buf := obj.NewQuadBuffer()
		slab.Generate(buf, world, 0, 0, 0, tt.data, 0)
		if buf.Len() != tt.want {
			t.Errorf("%s: %d faces, esperava %d", tt.name, buf.Len(), tt.want)
		}
	}
}

func TestVinesBitmask(t *testing.T) {
	r := mustRegistry(t)
	vines := r.Get(106).Model

	tests := []struct {
		name  string
		data  BlockData
		above uint16
		want  int
	}{
		{"sul", 1, 0, 1},
		{"norte e leste", 12, 0, 2},
		{"todas as paredes", 15, 0, 4},
		{"sul com teto opaco", 1, 1, 2},
		{"só teto", 0, 1, 1},
	}

	for _, tt := range tests {
		world := newFakeWorld()
		world.set(0, 1, 0, tt.above, 0)

		buf := obj.NewQuadBuffer()
		vines.Generate(buf, world, 0, 0, 0, tt.data, 0)
		if buf.Len() != tt.want {
			t.Errorf("%s: %d faces, esperava %d", tt.name, buf.Len(), tt.want)
		}
	}
}

func TestRailsShapes(t *testing.T) {
	r := mustRegistry(t)
	rails := r.Get(66).Model
	world := newFakeWorld()

	check := func(data BlockData, wantMat string) {
		t.Helper()
		f := obj.NewOBJFile("t")
		rails.Generate(f, world, 0, 0, 0, data, 0)
		if f.FaceCount() != 1 {
			t.Fatalf("data %d: %d faces, esperava 1", data, f.FaceCount())
		}
		if got := f.Materials.Name(1); got != wantMat {
			t.Errorf("data %d: material %q, esperava %q", data, got, wantMat)
		}
	}

	check(0, "rail")        // reto norte-sul
	check(2, "rail")        // subindo para leste
	check(6, "rail_curved") // curva sul-leste
	check(13, "rail")       // metadado malformado degrada para reto
}

func TestLiquidIsolatedSource(t *testing.T) {
	r := mustRegistry(t)
	world := newFakeWorld()
	world.set(0, 0, 0, 9, 0)

	buf := obj.NewQuadBuffer()
	r.Get(9).Model.Generate(buf, world, 0, 0, 0, 0, 0)

	// Fonte isolada: topo + fundo + 4 laterais.
	if buf.Len() != 6 {
		t.Errorf("fonte isolada deve emitir 6 faces, veio %d", buf.Len())
	}
}

func TestLiquidSurfaceWelds(t *testing.T) {
	r := mustRegistry(t)
	world := newFakeWorld()
	// Duas fontes lado a lado: a quina compartilhada tem a mesma altura
	// nos dois blocos, então os vértices soldam na dedup.
	world.set(0, 0, 0, 9, 0)
	world.set(1, 0, 0, 9, 0)

	f := obj.NewOBJFile("t")
	r.Get(9).Model.Generate(f, world, 0, 0, 0, 0, 0)
	r.Get(9).Model.Generate(f, world, 1, 0, 0, 0, 0)

	// 2 topos + 2 fundos + 6 laterais expostas compartilhando a aresta
	// central: 10 faces com 8+4+... os 4 vértices da aresta comum não
	// podem duplicar.
	if f.FaceCount() != 10 {
		t.Errorf("FaceCount = %d, esperava 10", f.FaceCount())
	}
	if f.VertexCount() >= 40 {
		t.Errorf("vértices da aresta comum deveriam soldar: %d ids", f.VertexCount())
	}
}
