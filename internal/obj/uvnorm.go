package obj

import (
	"fmt"
	"io"
)

// UVNormMap gerencia os pools de coordenadas de textura (vt) e normais
// (vn) do arquivo. Entradas são pooled por valor, não por face: as 6
// orientações padrão compartilham os mesmos 4 cantos de UV e uma normal
// cada, pré-registrados na criação. Receitas com mapeamento customizado
// registram valores explícitos sob demanda.
//
// A escrita é incremental (WritePending) para que entradas novas
// introduzidas no meio do streaming sejam emitidas antes das faces que as
// referenciam.
type UVNormMap struct {
	uvs     []UV
	uvIndex map[UV]int

	normals     []Normal
	normalIndex map[Normal]int

	sides map[Side]sideEntry

	writtenUVs     int
	writtenNormals int
}

type sideEntry struct {
	uvs    [4]int
	normal int
}

// sideNormals define a normal de cada orientação padrão.
// Norte = -Z, Sul = +Z, Leste = +X, Oeste = -X.
var sideNormals = map[Side]Normal{
	SideTop:    {X: 0, Y: 1, Z: 0},
	SideBottom: {X: 0, Y: -1, Z: 0},
	SideNorth:  {X: 0, Y: 0, Z: -1},
	SideSouth:  {X: 0, Y: 0, Z: 1},
	SideEast:   {X: 1, Y: 0, Z: 0},
	SideWest:   {X: -1, Y: 0, Z: 0},
}

// NewUVNormMap cria o pool com as entradas das 6 orientações padrão já
// registradas, na ordem fixa SideTop..SideWest.
func NewUVNormMap() *UVNormMap {
	m := &UVNormMap{
		uvIndex:     make(map[UV]int),
		normalIndex: make(map[Normal]int),
		sides:       make(map[Side]sideEntry),
	}

	// Os 4 cantos do quadrado unitário, compartilhados por todos os lados.
	corners := [4]int{
		m.UseUV(UV{0, 0}),
		m.UseUV(UV{1, 0}),
		m.UseUV(UV{1, 1}),
		m.UseUV(UV{0, 1}),
	}

	for side := SideTop; side <= SideWest; side++ {
		m.sides[side] = sideEntry{
			uvs:    corners,
			normal: m.UseNormal(sideNormals[side]),
		}
	}

	return m
}

// Calculate preenche os ids de UV e normal de uma face a partir da sua
// orientação. Orientações desconhecidas degradam para SideTop.
func (m *UVNormMap) Calculate(side Side, f *Face) {
	e, ok := m.sides[side]
	if !ok {
		e = m.sides[SideTop]
	}
	f.UVs = e.uvs
	n := e.normal
	f.Normals = [4]int{n, n, n, n}
}

// UseUV retorna o id de uma coordenada de textura, registrando-a se nova.
func (m *UVNormMap) UseUV(uv UV) int {
	if id, ok := m.uvIndex[uv]; ok {
		return id
	}
	m.uvs = append(m.uvs, uv)
	id := len(m.uvs)
	m.uvIndex[uv] = id
	return id
}

// UseNormal retorna o id de uma normal, registrando-a se nova.
func (m *UVNormMap) UseNormal(n Normal) int {
	if id, ok := m.normalIndex[n]; ok {
		return id
	}
	m.normals = append(m.normals, n)
	id := len(m.normals)
	m.normalIndex[n] = id
	return id
}

// WritePending escreve as linhas vt/vn ainda não emitidas, em ordem de id.
func (m *UVNormMap) WritePending(w io.Writer) error {
	for _, uv := range m.uvs[m.writtenUVs:] {
		if _, err := fmt.Fprintf(w, "vt %.4f %.4f\n", uv.U, uv.V); err != nil {
			return err
		}
	}
	m.writtenUVs = len(m.uvs)

	for _, n := range m.normals[m.writtenNormals:] {
		if _, err := fmt.Fprintf(w, "vn %.4f %.4f %.4f\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	m.writtenNormals = len(m.normals)
	return nil
}

// UVCount retorna o total de UVs registradas.
func (m *UVNormMap) UVCount() int { return len(m.uvs) }

// NormalCount retorna o total de normais registradas.
func (m *UVNormMap) NormalCount() int { return len(m.normals) }
