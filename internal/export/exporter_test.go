package export

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"MineVision/internal/blocks"
	"MineVision/internal/obj"
	"MineVision/shared/mapdata"
	"MineVision/shared/util"
)

// buildWorld monta um store com os blocos dados (id fixo de pedra).
func buildWorld(t *testing.T, coords ...[3]int32) *mapdata.WorldStore {
	t.Helper()
	store := mapdata.NewWorldStore()

	chunks := make(map[util.ChunkCoord]*mapdata.Chunk)
	for _, c := range coords {
		x, y, z := c[0], c[1], c[2]
		coord := util.BlockToChunk(x, z)
		chunk, ok := chunks[coord]
		if !ok {
			chunk = mapdata.NewChunk(coord)
			chunks[coord] = chunk
		}
		chunk.SetBlock(util.LocalCoord(x), y, util.LocalCoord(z), 1, 0)
	}
	for _, chunk := range chunks {
		store.StoreChunk(chunk)
	}
	return store
}

func runExport(t *testing.T, store *mapdata.WorldStore, opts Options) (*Stats, []string, string) {
	t.Helper()
	reg, err := blocks.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	var out bytes.Buffer
	stats, mats, err := NewExporter(store, reg, opts).Run(context.Background(), &out, "world.mtl")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return stats, mats, out.String()
}

func TestPipelinedWeldAcrossSeam(t *testing.T) {
	// Dois cubos de pedra colados na borda x=15.5 entre os chunks (0,0)
	// e (1,0). A face compartilhada sofre cull dos dois lados e os 4
	// vértices da borda precisam soldar: 12 vértices no total, não 16.
	store := buildWorld(t, [3]int32{15, 0, 0}, [3]int32{16, 0, 0})

	stats, _, out := runExport(t, store, Options{Workers: 2, Strategy: StrategyPipelined})

	if stats.Chunks != 2 {
		t.Errorf("Chunks = %d, esperava 2", stats.Chunks)
	}
	if stats.Faces != 10 {
		t.Errorf("Faces = %d, esperava 10 (5 por cubo)", stats.Faces)
	}
	if stats.Vertices != 12 {
		t.Errorf("Vertices = %d, esperava 12 com a solda na borda", stats.Vertices)
	}
	if got := strings.Count(out, "\nv "); got != 12 {
		t.Errorf("%d linhas de vértice no arquivo, esperava 12", got)
	}
	// As faces do segundo chunk referenciam ids do primeiro (1-8), então
	// nenhum índice pode passar de 12.
	if strings.Contains(out, " 13/") {
		t.Error("faces referenciam vértice 13: a solda na borda não aconteceu")
	}
}

func TestPipelinedDeterministicOutput(t *testing.T) {
	store := buildWorld(t,
		[3]int32{0, 0, 0}, [3]int32{15, 3, 7},
		[3]int32{20, 1, 2}, [3]int32{5, 0, 40},
	)

	opts := Options{Workers: 4, Strategy: StrategyPipelined}
	_, _, first := runExport(t, store, opts)
	_, _, second := runExport(t, store, opts)

	if first != second {
		t.Error("duas execuções com 4 workers produziram arquivos diferentes")
	}
}

func TestShardedConcatenation(t *testing.T) {
	// Dois cubos em chunks distintos, 2 shards: 8 vértices em cada shard,
	// os índices do segundo shard vêm deslocados.
	store := buildWorld(t, [3]int32{0, 0, 0}, [3]int32{32, 0, 0})

	stats, _, out := runExport(t, store, Options{Workers: 2, Strategy: StrategySharded})

	if stats.Faces != 12 {
		t.Errorf("Faces = %d, esperava 12", stats.Faces)
	}
	if stats.Vertices != 16 {
		t.Errorf("Vertices = %d, esperava 16 (shards não soldam)", stats.Vertices)
	}
	if got := strings.Count(out, "\nv "); got != 16 {
		t.Errorf("%d linhas de vértice, esperava 16", got)
	}
	// O segundo shard referencia vértices 9-16.
	if !strings.Contains(out, " 16/") && !strings.Contains(out, "f 16/") {
		t.Error("offset de vértices do segundo shard não foi aplicado")
	}
	if strings.Contains(out, " 17/") {
		t.Error("índice de vértice além do total: offset errado")
	}
}

func TestScannerOutOfBoundsChunk(t *testing.T) {
	store := buildWorld(t, [3]int32{0, 0, 0})
	reg, err := blocks.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	bounds, ok := BoundsFromStore(store)
	if !ok {
		t.Fatal("BoundsFromStore: mundo deveria estar populado")
	}

	// Chunk (5, 5) está fora dos limites populados: zero blocos, zero faces.
	scanner := NewChunkScanner(store, reg, bounds)
	buf := obj.NewQuadBuffer()
	n, err := scanner.Scan(buf, 5, 5)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 || buf.Len() != 0 {
		t.Errorf("chunk fora dos limites emitiu %d blocos e %d faces", n, buf.Len())
	}
}

func TestScannerClipsToBounds(t *testing.T) {
	store := buildWorld(t, [3]int32{0, 0, 0}, [3]int32{8, 0, 0})
	reg, err := blocks.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// Limita o export à metade oeste do chunk: só o bloco em x=0 entra.
	bounds := Bounds{MinX: 0, MaxX: 4, MinZ: 0, MaxZ: 16, MinY: 0, MaxY: 256}
	scanner := NewChunkScanner(store, reg, bounds)
	buf := obj.NewQuadBuffer()
	n, err := scanner.Scan(buf, 0, 0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 1 {
		t.Errorf("recorte deixou passar %d blocos, esperava 1", n)
	}
}

func TestRunCancelled(t *testing.T) {
	store := buildWorld(t, [3]int32{0, 0, 0})
	reg, err := blocks.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, _, err = NewExporter(store, reg, Options{Workers: 2}).Run(ctx, &out, "world.mtl")
	if err == nil {
		t.Error("contexto cancelado deveria abortar o export")
	}
}

// failWriter aceita n escritas e depois só devolve erro.
type failWriter struct {
	n int
}

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("disco cheio")
	}
	w.n--
	return len(p), nil
}

func TestRunReleasesWorkersOnWriteError(t *testing.T) {
	// Quatro chunks, um worker, escrita falhando no meio: o consumidor
	// retorna o erro e o pool inteiro precisa terminar, não ficar preso
	// enviando em results.
	store := buildWorld(t,
		[3]int32{0, 0, 0}, [3]int32{16, 0, 0},
		[3]int32{32, 0, 0}, [3]int32{48, 0, 0},
	)
	reg, err := blocks.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	before := runtime.NumGoroutine()
	_, _, err = NewExporter(store, reg, Options{Workers: 1, Strategy: StrategyPipelined}).
		Run(context.Background(), &failWriter{n: 2}, "world.mtl")
	if err == nil {
		t.Fatal("escrita falhando deveria abortar o export com erro")
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := runtime.NumGoroutine(); got > before {
		t.Errorf("%d goroutines depois do erro, %d antes: pool não foi liberado", got, before)
	}
}

func TestOffsetScaleInOutput(t *testing.T) {
	store := buildWorld(t, [3]int32{0, 0, 0})

	_, _, out := runExport(t, store, Options{
		Workers: 1, OffsetX: 10, Scale: 2,
	})

	// Vértice em x=-0.5 vira (−0.5+10)*2 = 19.00.
	if !strings.Contains(out, "v 19.00 ") {
		t.Error("offset/escala não aplicados na serialização")
	}
}

func TestMaterialNamesCollected(t *testing.T) {
	store := buildWorld(t, [3]int32{0, 0, 0})

	_, mats, _ := runExport(t, store, Options{Workers: 1})
	if len(mats) != 1 || mats[0] != "stone" {
		t.Errorf("materiais coletados = %v, esperava [stone]", mats)
	}
}
