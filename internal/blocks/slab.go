package blocks

import (
	"MineVision/internal/obj"
)

// SlabModel é a receita de meia-laje: metade inferior do bloco, ou
// superior quando o bit 0x8 do metadado está ligado. Só a face rente ao
// vizinho (base da laje inferior, topo da superior) sofre cull; as
// demais ficam sempre expostas.
type SlabModel struct {
	reg  *Registry
	info *BlockInfo
}

func (m *SlabModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	fx, fy, fz := float64(x), float64(y), float64(z)
	top := data&0x8 != 0

	y0, y1 := fy-0.5, fy
	if top {
		y0, y1 = fy, fy+0.5
	}

	for side := obj.SideTop; side <= obj.SideWest; side++ {
		if side == obj.SideBottom && !top && m.reg.IsOpaque(world.GetBlockID(x, y-1, z)) {
			continue
		}
		if side == obj.SideTop && top && m.reg.IsOpaque(world.GetBlockID(x, y+1, z)) {
			continue
		}
		sink.AddFace(
			boxFace(side, fx-0.5, y0, fz-0.5, fx+0.5, y1, fz+0.5),
			nil, side, m.info.sideMaterial(side, biome))
	}
}
