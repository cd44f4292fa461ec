package obj

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform é uma transformação afim 4x4 aplicada aos vértices de entrada
// de AddFace, antes da deduplicação. Translações puras são exatas em
// float64; rotações carregam o erro de sin/cos, então receitas que
// precisam soldar vértices entre blocos vizinhos emitem coordenadas
// absolutas em vez de rotacionar.
type Transform struct {
	m mgl64.Mat4
}

// NewTransform cria a transformação identidade.
func NewTransform() *Transform {
	return &Transform{m: mgl64.Ident4()}
}

// Translate cria uma translação pura.
func Translate(x, y, z float64) *Transform {
	return &Transform{m: mgl64.Translate3D(x, y, z)}
}

// RotateX cria uma rotação em graus ao redor do eixo X.
func RotateX(deg float64) *Transform {
	return &Transform{m: mgl64.HomogRotate3DX(deg * math.Pi / 180)}
}

// RotateY cria uma rotação em graus ao redor do eixo Y.
func RotateY(deg float64) *Transform {
	return &Transform{m: mgl64.HomogRotate3DY(deg * math.Pi / 180)}
}

// RotateZ cria uma rotação em graus ao redor do eixo Z.
func RotateZ(deg float64) *Transform {
	return &Transform{m: mgl64.HomogRotate3DZ(deg * math.Pi / 180)}
}

// Scale cria uma escala uniforme.
func Scale(s float64) *Transform {
	return &Transform{m: mgl64.Scale3D(s, s, s)}
}

// Multiply compõe t com other (t aplicado por último): resultado = t * other.
func (t *Transform) Multiply(other *Transform) *Transform {
	return &Transform{m: t.m.Mul4(other.m)}
}

// Apply aplica a transformação a um vértice.
func (t *Transform) Apply(v Vertex) Vertex {
	r := t.m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
	return Vertex{X: r.X(), Y: r.Y(), Z: r.Z()}
}
