package util

import (
	"fmt"
)

// ChunkSize é o tamanho horizontal de um chunk (16x16 células, altura total).
const ChunkSize = 16

// ChunkHeight é a altura total de uma coluna de chunk.
const ChunkHeight = 256

// ChunkCoord identifica uma coluna de chunk no mundo (coordenadas de chunk,
// não de bloco). X cresce para leste, Z para sul.
type ChunkCoord struct {
	X, Z int32
}

// NewChunkCoord cria uma coordenada de chunk.
func NewChunkCoord(x, z int32) ChunkCoord {
	return ChunkCoord{X: x, Z: z}
}

// String retorna a representação em string da coordenada.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// BlockToChunk converte uma coordenada de bloco para a coordenada do chunk
// que o contém.
func BlockToChunk(x, z int32) ChunkCoord {
	return ChunkCoord{X: FloorDiv(x, ChunkSize), Z: FloorDiv(z, ChunkSize)}
}

// LocalCoord retorna a posição local (0-15) de uma coordenada de bloco
// dentro do seu chunk.
func LocalCoord(v int32) int32 {
	return Mod(v, ChunkSize)
}

// FloorDiv divide arredondando para baixo (funciona com negativos).
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod retorna o resto sempre não-negativo (funciona com negativos).
func Mod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
