package obj

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// OBJFile é o buffer de vértices e faces do arquivo de saída. Ele acumula
// os quads emitidos pelas receitas de geometria, deduplicando cada vértice
// por igualdade exata, e serializa em formato OBJ.
//
// Ids de vértice são 1-based, contíguos e atribuídos na ordem do primeiro
// uso. O contador é global: sobrevive ao flush entre chunks
// (ClearData(true)) para que as faces de chunks seguintes referenciem
// vértices de borda já escritos no arquivo.
//
// O acesso não é sincronizado. No pipeline concorrente um único consumidor
// é o dono do OBJFile; workers produzem QuadBuffers independentes.
type OBJFile struct {
	// Identifier nomeia o objeto no arquivo (linha "g"). Normalmente o
	// nome do mundo ou as coordenadas da região exportada.
	Identifier string

	Materials *MaterialMap
	UVNorms   *UVNormMap

	// vertices contém apenas os vértices criados desde o último flush;
	// vertexIndex cobre também os vértices de borda retidos.
	vertices    []Vertex
	vertexIndex map[Vertex]int
	vertexCount int

	faces []Face

	offsetX, offsetY, offsetZ float64
	scale                     float64
}

// NewOBJFile cria um buffer vazio com escala 1.
func NewOBJFile(identifier string) *OBJFile {
	return &OBJFile{
		Identifier:  identifier,
		Materials:   NewMaterialMap(),
		UVNorms:     NewUVNormMap(),
		vertexIndex: make(map[Vertex]int),
		scale:       1.0,
	}
}

// SetOffset define o deslocamento aplicado apenas na serialização.
// Nunca altera os vértices armazenados (a dedup depende disso).
func (o *OBJFile) SetOffset(x, y, z float64) {
	o.offsetX, o.offsetY, o.offsetZ = x, y, z
}

// SetScale define a escala uniforme aplicada apenas na serialização.
func (o *OBJFile) SetScale(s float64) {
	o.scale = s
}

// useVertex deduplica um vértice por valor exato: insere se novo, senão
// reutiliza o id existente.
func (o *OBJFile) useVertex(v Vertex) int {
	if id, ok := o.vertexIndex[v]; ok {
		return id
	}
	o.vertices = append(o.vertices, v)
	o.vertexCount++
	o.vertexIndex[v] = o.vertexCount
	return o.vertexCount
}

// AddFace adiciona um quad: aplica a transformação opcional, resolve o
// material (create-on-first-use) e deriva UV/normal da orientação.
// A ordem dos vértices é preservada como emitida.
func (o *OBJFile) AddFace(verts [4]Vertex, trans *Transform, side Side, material string) {
	f := Face{MtlID: o.Materials.ID(material)}
	o.UVNorms.Calculate(side, &f)
	for i, v := range verts {
		if trans != nil {
			v = trans.Apply(v)
		}
		f.Vertices[i] = o.useVertex(v)
	}
	o.faces = append(o.faces, f)
}

// AddFaceUVNorm adiciona um quad com UVs e normais explícitos, para
// receitas que precisam de mapeamento de textura customizado. A dedup de
// vértices e a resolução de material são idênticas a AddFace.
func (o *OBJFile) AddFaceUVNorm(verts [4]Vertex, uvs [4]UV, norms [4]Normal, material string) {
	f := Face{MtlID: o.Materials.ID(material)}
	for i, v := range verts {
		f.Vertices[i] = o.useVertex(v)
		f.UVs[i] = o.UVNorms.UseUV(uvs[i])
		f.Normals[i] = o.UVNorms.UseNormal(norms[i])
	}
	o.faces = append(o.faces, f)
}

// WriteHeader escreve a linha mtllib que referencia o arquivo de materiais.
func (o *OBJFile) WriteHeader(w io.Writer, mtlFile string) error {
	_, err := fmt.Fprintf(w, "mtllib %s\n\n", mtlFile)
	return err
}

// WriteObjectName escreve a linha de nome do objeto.
func (o *OBJFile) WriteObjectName(w io.Writer) error {
	_, err := fmt.Fprintf(w, "g %s\n\n", o.Identifier)
	return err
}

// WriteVertices escreve uma linha "v" por vértice criado desde o último
// flush, na ordem de inserção, com (v + offset) * escala e duas casas
// decimais fixas.
func (o *OBJFile) WriteVertices(w io.Writer) error {
	for _, v := range o.vertices {
		_, err := fmt.Fprintf(w, "v %.2f %.2f %.2f\n",
			(v.X+o.offsetX)*o.scale,
			(v.Y+o.offsetY)*o.scale,
			(v.Z+o.offsetZ)*o.scale)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFaces ordena as faces por material (estável: empates mantêm a
// ordem de inserção) e escreve os quads. O marcador usemtl só é emitido
// quando o material muda em relação à face anterior; groupPerMaterial
// abre adicionalmente um grupo nomeado por material.
func (o *OBJFile) WriteFaces(w io.Writer, groupPerMaterial bool) error {
	return o.WriteFacesOffset(w, groupPerMaterial, 0, 0, 0)
}

// WriteFacesOffset é WriteFaces com deslocamento de índices, usado na
// concatenação de shards: cada shard soma os totais dos anteriores aos
// seus ids de vértice/UV/normal.
func (o *OBJFile) WriteFacesOffset(w io.Writer, groupPerMaterial bool, vOff, uvOff, nOff int) error {
	sort.SliceStable(o.faces, func(i, j int) bool {
		return o.faces[i].MtlID < o.faces[j].MtlID
	})

	lastMtl := -1
	for _, f := range o.faces {
		if f.MtlID != lastMtl {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			if groupPerMaterial {
				if _, err := fmt.Fprintf(w, "g %s_%d\n", o.Identifier, f.MtlID); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "usemtl %s\n", o.Materials.Name(f.MtlID)); err != nil {
				return err
			}
			lastMtl = f.MtlID
		}

		_, err := fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d %d/%d/%d\n",
			f.Vertices[0]+vOff, f.UVs[0]+uvOff, f.Normals[0]+nOff,
			f.Vertices[1]+vOff, f.UVs[1]+uvOff, f.Normals[1]+nOff,
			f.Vertices[2]+vOff, f.UVs[2]+uvOff, f.Normals[2]+nOff,
			f.Vertices[3]+vOff, f.UVs[3]+uvOff, f.Normals[3]+nOff)
		if err != nil {
			return err
		}
	}
	return nil
}

// isChunkBoundary diz se o vértice está exatamente sobre um plano de
// borda de chunk: coordenada ±0.5 congruente a 0 módulo 16 em x ou z.
// Blocos ficam centrados em coordenadas inteiras, então as bordas de um
// chunk caem em -0.5, 15.5, 31.5, ...
func isChunkBoundary(v Vertex) bool {
	return math.Mod(v.X-0.5, 16) == 0 || math.Mod(v.X+0.5, 16) == 0 ||
		math.Mod(v.Z-0.5, 16) == 0 || math.Mod(v.Z+0.5, 16) == 0
}

// ClearData limpa a lista de faces e, conforme o modo, os vértices:
//
//   - removeDuplicates=false: limpa tudo e zera o contador de ids. Uso
//     entre arquivos independentes.
//   - removeDuplicates=true: retém no índice apenas os vértices de borda
//     de chunk, que mantêm seus ids e continuam referenciáveis (soldáveis)
//     por faces de chunks vizinhos. Vértices interiores nunca são
//     compartilhados entre chunks e são liberados imediatamente, o que
//     limita a memória a O(um chunk + vértices de borda) em mundos de
//     tamanho arbitrário, sem um segundo passe global de soldagem.
func (o *OBJFile) ClearData(removeDuplicates bool) {
	o.faces = o.faces[:0]

	if !removeDuplicates {
		o.vertices = o.vertices[:0]
		o.vertexIndex = make(map[Vertex]int)
		o.vertexCount = 0
		return
	}

	for _, v := range o.vertices {
		if !isChunkBoundary(v) {
			delete(o.vertexIndex, v)
		}
	}
	o.vertices = o.vertices[:0]
}

// VertexCount retorna o total de ids de vértice já atribuídos, incluindo
// os de chunks já flushados.
func (o *OBJFile) VertexCount() int { return o.vertexCount }

// PendingVertexCount retorna quantos vértices aguardam serialização.
func (o *OBJFile) PendingVertexCount() int { return len(o.vertices) }

// FaceCount retorna o número de faces no buffer atual.
func (o *OBJFile) FaceCount() int { return len(o.faces) }
