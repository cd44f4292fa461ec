package obj

// Vertex é um ponto 3D em espaço local (relativo ao chunk, antes do offset
// de saída). A identidade de um vértice é a igualdade EXATA dos três
// valores: dois pontos que diferem no último bit representável são
// vértices distintos. Por isso a struct é usada diretamente como chave de
// map: o == de structs em Go compara os float64 por valor, sem epsilon,
// reproduzindo a semântica de deduplicação do formato.
type Vertex struct {
	X, Y, Z float64
}

// UV é uma coordenada de textura pooled por valor.
type UV struct {
	U, V float64
}

// Normal é um vetor normal pooled por valor.
type Normal struct {
	X, Y, Z float64
}

// Side identifica a orientação de uma face alinhada aos eixos.
// Norte = -Z, Sul = +Z, Leste = +X, Oeste = -X (convenção do mundo).
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideNorth
	SideSouth
	SideEast
	SideWest
)

// Face é um quad: exatamente 4 ids de vértice, 4 ids de UV, 4 ids de
// normal e um id de material. Nunca é triangulada.
type Face struct {
	Vertices [4]int
	UVs      [4]int
	Normals  [4]int
	MtlID    int
}

// FaceSink é a interface que as receitas de geometria usam para emitir
// quads. OBJFile implementa a versão final (dedup + buffers); QuadBuffer
// implementa a versão intermediária usada pelos workers.
type FaceSink interface {
	// AddFace aplica a transformação opcional aos vértices, resolve o
	// material e deriva UV/normal da orientação da face.
	AddFace(verts [4]Vertex, trans *Transform, side Side, material string)

	// AddFaceUVNorm é o caminho para mapeamento de textura customizado:
	// UVs e normais explícitos, pooled por valor, sem derivação por lado.
	AddFaceUVNorm(verts [4]Vertex, uvs [4]UV, norms [4]Normal, material string)
}
