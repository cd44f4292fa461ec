package blocks

import (
	"math"

	"MineVision/internal/obj"
)

// CrossModel é a receita de plantas: dois quads diagonais cruzados em X,
// sem cull. Usa o caminho de UV/normal explícito porque as normais
// diagonais não existem no pool derivado por orientação.
type CrossModel struct {
	info *BlockInfo
}

var crossUVs = [4]obj.UV{{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}, {U: 0, V: 1}}

func (m *CrossModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	fx, fy, fz := float64(x), float64(y), float64(z)
	mat := m.info.TintedMaterial(0, biome)

	d := 1 / math.Sqrt2

	// Diagonal NW-SE.
	sink.AddFaceUVNorm(
		[4]obj.Vertex{
			{X: fx - 0.5, Y: fy - 0.5, Z: fz - 0.5},
			{X: fx + 0.5, Y: fy - 0.5, Z: fz + 0.5},
			{X: fx + 0.5, Y: fy + 0.5, Z: fz + 0.5},
			{X: fx - 0.5, Y: fy + 0.5, Z: fz - 0.5},
		},
		crossUVs,
		[4]obj.Normal{{X: d, Z: -d}, {X: d, Z: -d}, {X: d, Z: -d}, {X: d, Z: -d}},
		mat)

	// Diagonal NE-SW.
	sink.AddFaceUVNorm(
		[4]obj.Vertex{
			{X: fx + 0.5, Y: fy - 0.5, Z: fz - 0.5},
			{X: fx - 0.5, Y: fy - 0.5, Z: fz + 0.5},
			{X: fx - 0.5, Y: fy + 0.5, Z: fz + 0.5},
			{X: fx + 0.5, Y: fy + 0.5, Z: fz - 0.5},
		},
		crossUVs,
		[4]obj.Normal{{X: -d, Z: -d}, {X: -d, Z: -d}, {X: -d, Z: -d}, {X: -d, Z: -d}},
		mat)
}
