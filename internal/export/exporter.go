package export

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"MineVision/internal/blocks"
	"MineVision/internal/obj"
	"MineVision/shared/mapdata"
	"MineVision/shared/util"
)

// Estratégias de concorrência do export.
const (
	// StrategyPipelined mantém um único OBJFile: workers geram a geometria
	// de cada chunk em buffers, um consumidor replica em ordem e descarta
	// os vértices interiores após cada chunk. Memória limitada, vértices
	// de borda soldam entre chunks vizinhos.
	StrategyPipelined = "pipelined"

	// StrategySharded dá um OBJFile a cada worker e concatena tudo no fim
	// com offsets de índice. Mais rápido e sem ponto de serialização, mas
	// sem solda entre shards e com memória proporcional ao mundo.
	StrategySharded = "sharded"
)

// Request é um chunk agendado para varredura.
type Request struct {
	Seq   int
	Coord util.ChunkCoord
}

// Result é a geometria produzida por um worker para um chunk.
type Result struct {
	Seq    int
	Coord  util.ChunkCoord
	Quads  *obj.QuadBuffer
	Blocks int
	Err    error
}

// Options configura um export.
type Options struct {
	Identifier       string
	Workers          int
	Strategy         string
	GroupPerMaterial bool

	// Offset e escala aplicados na serialização dos vértices.
	OffsetX, OffsetY, OffsetZ float64
	Scale                     float64

	// Bounds limita a região exportada. Zero = limites populados do store.
	Bounds *Bounds
}

// Stats resume um export concluído.
type Stats struct {
	Chunks   int
	Blocks   int
	Faces    int
	Vertices int
	Duration time.Duration
}

// Exporter varre o mundo em chunks e escreve o arquivo OBJ.
type Exporter struct {
	store    *mapdata.WorldStore
	registry *blocks.Registry
	opts     Options
}

// NewExporter monta um exportador. Workers <= 0 vira 1; estratégia vazia
// vira pipelined.
func NewExporter(store *mapdata.WorldStore, registry *blocks.Registry, opts Options) *Exporter {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyPipelined
	}
	if opts.Scale == 0 {
		opts.Scale = 1.0
	}
	if opts.Identifier == "" {
		opts.Identifier = "world"
	}
	return &Exporter{store: store, registry: registry, opts: opts}
}

// chunkList monta a lista de chunks a varrer em ordem determinística:
// z crescente, depois x crescente.
func (e *Exporter) chunkList(b Bounds) []util.ChunkCoord {
	cx0 := util.FloorDiv(b.MinX, util.ChunkSize)
	cx1 := util.FloorDiv(b.MaxX-1, util.ChunkSize)
	cz0 := util.FloorDiv(b.MinZ, util.ChunkSize)
	cz1 := util.FloorDiv(b.MaxZ-1, util.ChunkSize)

	var list []util.ChunkCoord
	for cz := cz0; cz <= cz1; cz++ {
		for cx := cx0; cx <= cx1; cx++ {
			// Pula colunas que nem existem no store
			if c, ok := e.store.GetChunk(util.NewChunkCoord(cx, cz)); !ok || c.IsEmpty {
				continue
			}
			list = append(list, util.NewChunkCoord(cx, cz))
		}
	}
	return list
}

// Run executa o export escrevendo o OBJ em w. Retorna as estatísticas e
// os nomes de material usados (para a escrita do MTL).
func (e *Exporter) Run(ctx context.Context, w io.Writer, mtlFile string) (*Stats, []string, error) {
	bounds, ok := BoundsFromStore(e.store)
	if !ok {
		return nil, nil, fmt.Errorf("mundo vazio: nada para exportar")
	}
	if e.opts.Bounds != nil {
		bounds = bounds.Intersect(*e.opts.Bounds)
	}
	if bounds.Empty() {
		return nil, nil, fmt.Errorf("região pedida não intersecta o mundo populado")
	}

	chunks := e.chunkList(bounds)
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("nenhuma coluna populada na região pedida")
	}

	// Cancela o pool em qualquer retorno antecipado (erro de escrita,
	// chunk inválido); sem isso os workers ficariam presos em results.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("[Export] Iniciando export %s: %d chunks, %d workers, estratégia %s",
		e.opts.Identifier, len(chunks), e.opts.Workers, e.opts.Strategy)

	start := time.Now()
	var stats *Stats
	var materials []string
	var err error

	switch e.opts.Strategy {
	case StrategyPipelined:
		stats, materials, err = e.runPipelined(ctx, w, mtlFile, bounds, chunks)
	case StrategySharded:
		stats, materials, err = e.runSharded(ctx, w, mtlFile, bounds, chunks)
	default:
		return nil, nil, fmt.Errorf("estratégia desconhecida: %q", e.opts.Strategy)
	}
	if err != nil {
		return nil, nil, err
	}

	stats.Duration = time.Since(start)
	log.Printf("[Export] Concluído em %v: %d chunks, %d blocos, %d faces, %d vértices",
		stats.Duration.Round(time.Millisecond), stats.Chunks, stats.Blocks, stats.Faces, stats.Vertices)
	return stats, materials, nil
}

// startWorkers dispara o pool que varre chunks e devolve QuadBuffers.
func (e *Exporter) startWorkers(ctx context.Context, bounds Bounds, chunks []util.ChunkCoord) <-chan Result {
	requests := make(chan Request, e.opts.Workers)
	results := make(chan Result, e.opts.Workers)

	go func() {
		defer close(requests)
		for i, coord := range chunks {
			select {
			case requests <- Request{Seq: i, Coord: coord}:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	for i := 0; i < e.opts.Workers; i++ {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[PANIC] Erro no worker de export: %v", r)
				}
				done <- struct{}{}
			}()

			scanner := NewChunkScanner(e.store, e.registry, bounds)
			for req := range requests {
				buf := obj.NewQuadBuffer()
				n, err := scanner.Scan(buf, req.Coord.X, req.Coord.Z)
				res := Result{Seq: req.Seq, Coord: req.Coord, Quads: buf, Blocks: n, Err: err}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		for i := 0; i < e.opts.Workers; i++ {
			<-done
		}
		close(results)
	}()

	return results
}

// runPipelined consome os resultados em ordem de sequência, replicando
// cada chunk em um único OBJFile e descartando os vértices interiores
// logo em seguida.
func (e *Exporter) runPipelined(ctx context.Context, w io.Writer, mtlFile string, bounds Bounds, chunks []util.ChunkCoord) (*Stats, []string, error) {
	f := obj.NewOBJFile(e.opts.Identifier)
	f.SetOffset(e.opts.OffsetX, e.opts.OffsetY, e.opts.OffsetZ)
	f.SetScale(e.opts.Scale)

	if err := f.WriteHeader(w, mtlFile); err != nil {
		return nil, nil, err
	}
	if err := f.WriteObjectName(w); err != nil {
		return nil, nil, err
	}

	results := e.startWorkers(ctx, bounds, chunks)

	stats := &Stats{}
	// Resultados chegam fora de ordem; guardamos até a vez deles.
	buffered := make(map[int]Result)
	next := 0

	flush := func(res Result) error {
		if res.Err != nil {
			log.Printf("[Export] Chunk %v falhou, pulando: %v", res.Coord, res.Err)
			return nil
		}

		res.Quads.Replay(f)

		if err := f.UVNorms.WritePending(w); err != nil {
			return err
		}
		if err := f.WriteVertices(w); err != nil {
			return err
		}
		if err := f.WriteFaces(w, e.opts.GroupPerMaterial); err != nil {
			return err
		}

		stats.Chunks++
		stats.Blocks += res.Blocks
		stats.Faces += res.Quads.Len()

		// Libera os vértices interiores; os de borda ficam para soldar
		// com os chunks vizinhos.
		f.ClearData(true)
		return nil
	}

	for res := range results {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		buffered[res.Seq] = res
		for {
			pending, ok := buffered[next]
			if !ok {
				break
			}
			delete(buffered, next)
			if err := flush(pending); err != nil {
				return nil, nil, err
			}
			next++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if next != len(chunks) {
		return nil, nil, fmt.Errorf("export incompleto: %d de %d chunks processados", next, len(chunks))
	}

	stats.Vertices = f.VertexCount()
	return stats, f.Materials.Names(), nil
}

// runSharded dá um OBJFile a cada worker (chunk i vai para o shard i % N)
// e concatena os shards no fim com offsets de índice.
func (e *Exporter) runSharded(ctx context.Context, w io.Writer, mtlFile string, bounds Bounds, chunks []util.ChunkCoord) (*Stats, []string, error) {
	shards := make([]*obj.OBJFile, e.opts.Workers)
	for i := range shards {
		shards[i] = obj.NewOBJFile(e.opts.Identifier)
		shards[i].SetOffset(e.opts.OffsetX, e.opts.OffsetY, e.opts.OffsetZ)
		shards[i].SetScale(e.opts.Scale)
	}

	results := e.startWorkers(ctx, bounds, chunks)

	stats := &Stats{}
	for res := range results {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if res.Err != nil {
			log.Printf("[Export] Chunk %v falhou, pulando: %v", res.Coord, res.Err)
			continue
		}

		// A replicação acontece aqui no consumidor: cada shard é tocado
		// por uma única goroutine.
		res.Quads.Replay(shards[res.Seq%len(shards)])
		stats.Chunks++
		stats.Blocks += res.Blocks
		stats.Faces += res.Quads.Len()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	f := shards[0]
	if err := f.WriteHeader(w, mtlFile); err != nil {
		return nil, nil, err
	}
	if err := f.WriteObjectName(w); err != nil {
		return nil, nil, err
	}

	vOff, uvOff, nOff := 0, 0, 0
	for _, shard := range shards {
		if err := shard.UVNorms.WritePending(w); err != nil {
			return nil, nil, err
		}
		if err := shard.WriteVertices(w); err != nil {
			return nil, nil, err
		}
		if err := shard.WriteFacesOffset(w, e.opts.GroupPerMaterial, vOff, uvOff, nOff); err != nil {
			return nil, nil, err
		}
		vOff += shard.VertexCount()
		uvOff += shard.UVNorms.UVCount()
		nOff += shard.UVNorms.NormalCount()
		stats.Vertices += shard.VertexCount()
	}

	return stats, mergeMaterialNames(shards), nil
}

// mergeMaterialNames une os materiais de todos os shards, sem repetição.
func mergeMaterialNames(shards []*obj.OBJFile) []string {
	seen := make(map[string]bool)
	var names []string
	for _, shard := range shards {
		for _, name := range shard.Materials.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
