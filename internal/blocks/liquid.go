package blocks

import (
	"MineVision/internal/obj"
)

// LiquidModel é a receita de água e lava. A altura da superfície vem do
// nível no metadado (0 = fonte cheia, 7 = quase vazio) e cada quina do
// quad superior é a média das alturas dos até 4 blocos do mesmo líquido
// que a tocam, o que une a superfície entre blocos e chunks vizinhos
// sem degrau.
type LiquidModel struct {
	reg  *Registry
	info *BlockInfo
}

// surfaceHeight converte o nível do metadado em altura da coluna (0..1).
func surfaceHeight(data BlockData) float64 {
	level := float64(data & 0x7)
	return 1 - (level+1)/9
}

// sameLiquid diz se a célula contém o mesmo líquido (água com água,
// lava com lava, parado ou corrente).
func (m *LiquidModel) sameLiquid(world WorldReader, x, y, z int32) bool {
	info := m.reg.Get(world.GetBlockID(x, y, z))
	if info == nil {
		return false
	}
	if _, ok := info.Model.(*LiquidModel); !ok {
		return false
	}
	return info.Material(0) == m.info.Material(0)
}

// cornerHeight calcula a altura de uma quina: média das alturas das
// células do mesmo líquido entre as 4 que tocam a quina (a própria célula
// sempre conta). Se qualquer uma delas tem o mesmo líquido por cima, a
// quina crava em 1.0 (coluna d'água / cachoeira).
func (m *LiquidModel) cornerHeight(world WorldReader, x, y, z, dx, dz int32) float64 {
	cells := [4][2]int32{{0, 0}, {dx, 0}, {0, dz}, {dx, dz}}

	sum, n := 0.0, 0
	for _, c := range cells {
		cx, cz := x+c[0], z+c[1]
		if !m.sameLiquid(world, cx, y, cz) {
			continue
		}
		if m.sameLiquid(world, cx, y+1, cz) {
			return 1.0
		}
		sum += surfaceHeight(world.GetBlockData(cx, y, cz))
		n++
	}
	if n == 0 {
		return surfaceHeight(world.GetBlockData(x, y, z))
	}
	return sum / float64(n)
}

func (m *LiquidModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	fx, fy, fz := float64(x), float64(y), float64(z)
	x0, x1 := fx-0.5, fx+0.5
	z0, z1 := fz-0.5, fz+0.5
	y0 := fy - 0.5
	mat := m.info.Material(0)

	submerged := m.sameLiquid(world, x, y+1, z)

	hNW := m.cornerHeight(world, x, y, z, -1, -1)
	hNE := m.cornerHeight(world, x, y, z, 1, -1)
	hSW := m.cornerHeight(world, x, y, z, -1, 1)
	hSE := m.cornerHeight(world, x, y, z, 1, 1)
	if submerged {
		hNW, hNE, hSW, hSE = 1, 1, 1, 1
	}

	if !submerged {
		sink.AddFace([4]obj.Vertex{
			{X: x0, Y: y0 + hNW, Z: z0},
			{X: x0, Y: y0 + hSW, Z: z1},
			{X: x1, Y: y0 + hSE, Z: z1},
			{X: x1, Y: y0 + hNE, Z: z0},
		}, nil, obj.SideTop, mat)
	}

	if !m.sameLiquid(world, x, y-1, z) && !m.reg.IsOpaque(world.GetBlockID(x, y-1, z)) {
		sink.AddFace(boxFace(obj.SideBottom, x0, y0, z0, x1, y0+1, z1), nil, obj.SideBottom, mat)
	}

	// Laterais só contra células que não são o mesmo líquido nem opacas;
	// a borda superior acompanha as alturas das quinas.
	if !m.sameLiquid(world, x, y, z-1) && !m.reg.IsOpaque(world.GetBlockID(x, y, z-1)) {
		sink.AddFace([4]obj.Vertex{
			{X: x1, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z0}, {X: x0, Y: y0 + hNW, Z: z0}, {X: x1, Y: y0 + hNE, Z: z0},
		}, nil, obj.SideNorth, mat)
	}
	if !m.sameLiquid(world, x, y, z+1) && !m.reg.IsOpaque(world.GetBlockID(x, y, z+1)) {
		sink.AddFace([4]obj.Vertex{
			{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y0 + hSE, Z: z1}, {X: x0, Y: y0 + hSW, Z: z1},
		}, nil, obj.SideSouth, mat)
	}
	if !m.sameLiquid(world, x+1, y, z) && !m.reg.IsOpaque(world.GetBlockID(x+1, y, z)) {
		sink.AddFace([4]obj.Vertex{
			{X: x1, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y0 + hNE, Z: z0}, {X: x1, Y: y0 + hSE, Z: z1},
		}, nil, obj.SideEast, mat)
	}
	if !m.sameLiquid(world, x-1, y, z) && !m.reg.IsOpaque(world.GetBlockID(x-1, y, z)) {
		sink.AddFace([4]obj.Vertex{
			{X: x0, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z1}, {X: x0, Y: y0 + hSW, Z: z1}, {X: x0, Y: y0 + hNW, Z: z0},
		}, nil, obj.SideWest, mat)
	}
}
