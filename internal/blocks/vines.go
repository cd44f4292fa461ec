package blocks

import (
	"MineVision/internal/obj"
)

// VinesModel é a receita de vinhas: um quad fino encostado em cada parede
// indicada pelo bitmask do metadado (sul=1, oeste=2, norte=4, leste=8) e,
// se o bloco de cima for totalmente opaco, um quad pendurado no teto.
type VinesModel struct {
	reg  *Registry
	info *BlockInfo
}

// O plano base fica a 0.03 da parede norte; as demais direções são
// rotações dele.
var vinePlane = [4]obj.Vertex{
	{X: -0.5, Y: -0.5, Z: -0.47},
	{X: 0.5, Y: -0.5, Z: -0.47},
	{X: 0.5, Y: 0.5, Z: -0.47},
	{X: -0.5, Y: 0.5, Z: -0.47},
}

func (m *VinesModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	south := data&1 != 0
	west := data&2 != 0
	north := data&4 != 0
	east := data&8 != 0
	top := m.reg.IsOpaque(world.GetBlockID(x, y+1, z))

	mat := m.info.TintedMaterial(0, biome)
	trans := obj.Translate(float64(x), float64(y), float64(z))

	if north {
		sink.AddFace(vinePlane, trans, obj.SideSouth, mat)
	}
	if south {
		sink.AddFace(vinePlane, trans.Multiply(obj.RotateY(180)), obj.SideNorth, mat)
	}
	if east {
		sink.AddFace(vinePlane, trans.Multiply(obj.RotateY(90)), obj.SideWest, mat)
	}
	if west {
		sink.AddFace(vinePlane, trans.Multiply(obj.RotateY(-90)), obj.SideEast, mat)
	}
	if top {
		sink.AddFace(vinePlane, trans.Multiply(obj.RotateX(90)), obj.SideBottom, mat)
	}
}
