package obj

// QuadBuffer é um FaceSink intermediário: grava os quads emitidos pela
// varredura de um chunk para que um único consumidor os aplique depois no
// OBJFile compartilhado, na ordem determinística dos chunks. Transformações
// são aplicadas na gravação (trabalho de CPU fica no worker); o replay só
// repassa vértices já finais.
type QuadBuffer struct {
	quads []recordedQuad
}

type recordedQuad struct {
	verts    [4]Vertex
	side     Side
	explicit bool
	uvs      [4]UV
	norms    [4]Normal
	material string
}

// NewQuadBuffer cria um buffer vazio.
func NewQuadBuffer() *QuadBuffer {
	return &QuadBuffer{}
}

// AddFace implementa FaceSink. A transformação é aplicada imediatamente.
func (b *QuadBuffer) AddFace(verts [4]Vertex, trans *Transform, side Side, material string) {
	if trans != nil {
		for i := range verts {
			verts[i] = trans.Apply(verts[i])
		}
	}
	b.quads = append(b.quads, recordedQuad{verts: verts, side: side, material: material})
}

// AddFaceUVNorm implementa FaceSink para o caminho de UV customizado.
func (b *QuadBuffer) AddFaceUVNorm(verts [4]Vertex, uvs [4]UV, norms [4]Normal, material string) {
	b.quads = append(b.quads, recordedQuad{
		verts:    verts,
		explicit: true,
		uvs:      uvs,
		norms:    norms,
		material: material,
	})
}

// Replay reaplica os quads gravados, na ordem de emissão, em outro sink.
func (b *QuadBuffer) Replay(dst FaceSink) {
	for _, q := range b.quads {
		if q.explicit {
			dst.AddFaceUVNorm(q.verts, q.uvs, q.norms, q.material)
		} else {
			dst.AddFace(q.verts, nil, q.side, q.material)
		}
	}
}

// Len retorna o número de quads gravados.
func (b *QuadBuffer) Len() int { return len(b.quads) }
