package blocks

import (
	"MineVision/internal/obj"
)

// RailsModel é a receita de trilhos: um quad plano logo acima do chão
// (y-0.47), rotacionado conforme a forma, ou inclinado nas variantes
// ascendentes. Formas curvas usam o segundo material da tabela. Metadado
// fora do intervalo degrada para o trilho reto norte-sul.
type RailsModel struct {
	info *BlockInfo
}

var railFlat = [4]obj.Vertex{
	{X: -0.5, Y: -0.47, Z: 0.5},
	{X: 0.5, Y: -0.47, Z: 0.5},
	{X: 0.5, Y: -0.47, Z: -0.5},
	{X: -0.5, Y: -0.47, Z: -0.5},
}

var railAscending = [4]obj.Vertex{
	{X: -0.5, Y: -0.47, Z: 0.5},
	{X: 0.5, Y: -0.47, Z: 0.5},
	{X: 0.5, Y: 0.53, Z: -0.5},
	{X: -0.5, Y: 0.53, Z: -0.5},
}

func (m *RailsModel) Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32) {
	shape := data & 0xF

	var ascending, curved bool
	rotate := obj.NewTransform()

	switch shape {
	case 0: // norte-sul
	case 1: // leste-oeste
		rotate = obj.RotateY(90)
	case 2: // subindo para leste
		ascending = true
		rotate = obj.RotateY(90)
	case 3: // subindo para oeste
		ascending = true
		rotate = obj.RotateY(-90)
	case 4: // subindo para norte
		ascending = true
	case 5: // subindo para sul
		ascending = true
		rotate = obj.RotateY(180)
	case 6: // curva sul-leste
		curved = true
	case 7: // curva sul-oeste
		curved = true
		rotate = obj.RotateY(90)
	case 8: // curva norte-oeste
		curved = true
		rotate = obj.RotateY(180)
	case 9: // curva norte-leste
		curved = true
		rotate = obj.RotateY(-90)
	default:
		// Metadado malformado: trilho reto norte-sul.
	}

	mat := m.info.Material(0)
	if curved {
		mat = m.info.Material(1)
	}

	trans := obj.Translate(float64(x), float64(y), float64(z)).Multiply(rotate)

	verts := railFlat
	if ascending {
		verts = railAscending
	}
	sink.AddFace(verts, trans, obj.SideTop, mat)
}
