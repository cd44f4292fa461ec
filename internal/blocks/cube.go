package blocks

import (
	"MineVision/internal/obj"
)

// boxFace retorna o quad de uma face de uma caixa alinhada aos eixos,
// com enrolamento anti-horário visto de fora. As receitas emitem
// coordenadas absolutas (sem matriz de rotação) para que vértices
// compartilhados entre blocos vizinhos soldem com igualdade exata.
func boxFace(side obj.Side, x0, y0, z0, x1, y1, z1 float64) [4]obj.Vertex {
	switch side {
	case obj.SideTop:
		return [4]obj.Vertex{{X: x0, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x1, Y: y1, Z: z0}}
	case obj.SideBottom:
		return [4]obj.Vertex{{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z1}, {X: x0, Y: y0, Z: z1}}
	case obj.SideNorth:
		return [4]obj.Vertex{{X: x1, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z0}, {X: x0, Y: y1, Z: z0}, {X: x1, Y: y1, Z: z0}}
	case obj.SideSouth:
		return [4]obj.Vertex{{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1}}
	case obj.SideEast:
		return [4]obj.Vertex{{X: x1, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x1, Y: y1, Z: z1}}
	default: // SideWest
		return [4]obj.Vertex{{X: x0, Y: y0, Z: z0}, {X: x0, Y: y0, Z: z1}, {X: x0, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z0}}
	}
}

// neighborOffsets dá o deslocamento de bloco de cada orientação.
var neighborOffsets = map[obj.Side][3]int32{
	obj.SideTop:    {0, 1, 0},
	obj.SideBottom: {0, -1, 0},
	obj.SideNorth:  {0, 0, -1},
	obj.SideSouth:  {0, 0, 1},
	obj.SideEast:   {1, 0, 0},
	obj.SideWest:   {-1, 0, 0},
}

// CubeModel é a receita do bloco cheio padrão: um cubo unitário centrado
// na coordenada do bloco, com cull das faces encostadas em vizinhos
// opacos.
type CubeModel struct {
	reg  *Registry
	info *BlockInfo
}

func (m *CubeModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	fx, fy, fz := float64(x), float64(y), float64(z)

	for side := obj.SideTop; side <= obj.SideWest; side++ {
		off := neighborOffsets[side]
		if m.reg.IsOpaque(world.GetBlockID(x+off[0], y+off[1], z+off[2])) {
			continue
		}
		sink.AddFace(
			boxFace(side, fx-0.5, fy-0.5, fz-0.5, fx+0.5, fy+0.5, fz+0.5),
			nil, side, m.info.sideMaterial(side, biome))
	}
}
