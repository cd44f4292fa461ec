// Package blocks contém o registro de tipos de bloco e as receitas de
// geometria. Cada tipo implementa uma única operação (Generate) e o
// despacho é feito por tabela de lookup: sem hierarquia de herança,
// apenas implementações independentes registradas por id.
package blocks

import (
	"fmt"

	"MineVision/internal/obj"
)

// BlockData é o metadado cru por célula (orientação, nível de líquido,
// variante, flags). A interpretação é de cada receita.
type BlockData uint16

// WorldReader é o acesso somente-leitura que as receitas usam para
// consultar vizinhos (ex: cull de faces contra blocos opacos).
type WorldReader interface {
	GetBlockID(x, y, z int32) uint16
	GetBlockData(x, y, z int32) BlockData
	GetBiome(x, z int32) int32
}

// Model é o contrato de uma receita de geometria: stateless, pura sobre
// os dados locais e as consultas de vizinhança, emitindo zero ou mais
// quads no sink. Metadados malformados degradam para uma forma padrão e
// nunca retornam erro (saída imperfeita é preferível a abortar).
type Model interface {
	Generate(sink obj.FaceSink, world WorldReader, x, y, z int32, data BlockData, biome int32)
}

// Occlusion descreve quanto um bloco esconde os vizinhos.
type Occlusion int

const (
	// OcclusionNone não esconde nada (plantas, líquidos, folhas).
	OcclusionNone Occlusion = iota
	// OcclusionFull esconde completamente a face encostada do vizinho.
	OcclusionFull
)

// BlockInfo descreve um tipo de bloco registrado.
type BlockInfo struct {
	ID        uint16
	Name      string
	Materials []string
	Occlusion Occlusion
	BiomeTint bool
	Model     Model
}

// Material retorna o material de índice n, com clamp para o primeiro
// quando a tabela tem menos entradas que a receita espera.
func (i *BlockInfo) Material(n int) string {
	if len(i.Materials) == 0 {
		return i.Name
	}
	if n < 0 || n >= len(i.Materials) {
		n = 0
	}
	return i.Materials[n]
}

// TintedMaterial aplica o sufixo de bioma quando o bloco é tingido
// (grama, folhas, vinhas variam de cor por bioma no jogo).
func (i *BlockInfo) TintedMaterial(n int, biome int32) string {
	mat := i.Material(n)
	if i.BiomeTint {
		return fmt.Sprintf("%s_b%d", mat, biome)
	}
	return mat
}

// sideMaterial resolve o material de uma face de cubo. Convenção da
// tabela: 1 entrada = todas as faces; 3 entradas = topo, base, laterais.
func (i *BlockInfo) sideMaterial(side obj.Side, biome int32) string {
	if len(i.Materials) < 3 {
		return i.TintedMaterial(0, biome)
	}
	switch side {
	case obj.SideTop:
		return i.TintedMaterial(0, biome)
	case obj.SideBottom:
		return i.TintedMaterial(1, biome)
	default:
		return i.TintedMaterial(2, biome)
	}
}
