package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"MineVision/internal/blocks"
	"MineVision/internal/export"
	"MineVision/shared/config"
	"MineVision/shared/mapdata"
	"MineVision/shared/util"
)

func main() {
	log.SetFlags(log.Ltime)

	cfg := config.Load()
	worldName := flag.String("world", cfg.WorldName, "nome do save no SQLite local")
	serverURL := flag.String("server", cfg.ServerURL, "URL do servidor de mundos (vazio = save local)")
	outputOBJ := flag.String("obj", cfg.OutputOBJ, "arquivo OBJ de saída")
	outputMTL := flag.String("mtl", cfg.OutputMTL, "arquivo MTL de saída")
	identifier := flag.String("name", cfg.Identifier, "nome do objeto no OBJ")
	scale := flag.Float64("scale", cfg.Scale, "escala uniforme dos vértices")
	offsetX := flag.Float64("ox", cfg.OffsetX, "deslocamento X")
	offsetY := flag.Float64("oy", cfg.OffsetY, "deslocamento Y")
	offsetZ := flag.Float64("oz", cfg.OffsetZ, "deslocamento Z")
	threads := flag.Int("threads", cfg.MesherThreads, "workers de varredura")
	strategy := flag.String("strategy", cfg.Strategy, "pipelined | sharded")
	groupMtl := flag.Bool("groups", cfg.GroupPerMaterial, "um grupo OBJ por material")
	blocksPath := flag.String("blocks", cfg.BlocksPath, "tabela YAML de blocos (override)")
	matsPath := flag.String("materials", cfg.MaterialsPath, "tabela YAML de cores (override)")
	region := flag.String("region", "", "sub-região \"minX,minZ,maxX,maxZ\" em blocos (Max exclusivo)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("╔══════════════════════════════════════╗")
	log.Println("║     MineVision EXPORTER v0.1.0       ║")
	log.Println("╚══════════════════════════════════════╝")

	registry, err := blocks.NewRegistry()
	if err != nil {
		log.Fatalf("Erro fatal na tabela de blocos: %v", err)
	}
	if *blocksPath != "" {
		if err := registry.LoadOverrides(*blocksPath); err != nil {
			log.Fatalf("Erro na tabela de blocos %s: %v", *blocksPath, err)
		}
	}

	matStore, err := mapdata.NewMaterialStore()
	if err != nil {
		log.Fatalf("Erro fatal na tabela de materiais: %v", err)
	}
	if *matsPath != "" {
		if err := matStore.LoadOverrides(*matsPath); err != nil {
			log.Fatalf("Erro na tabela de materiais %s: %v", *matsPath, err)
		}
	}

	store := mapdata.NewWorldStore()
	defer store.Close()

	if *serverURL != "" {
		if err := loadRemote(ctx, store, *serverURL); err != nil {
			log.Fatalf("Erro fatal ao baixar o mundo: %v", err)
		}
	} else {
		log.Printf("[Export] Carregando mundo %q do SQLite local...", *worldName)
		if err := store.LoadAll(*worldName); err != nil {
			log.Fatalf("Erro fatal ao carregar o mundo: %v", err)
		}
		// Cores resolvidas em exports anteriores ficam no mesmo banco
		matStore.DB = store.DB
		if err := matStore.LoadFromDB(); err != nil {
			log.Printf("[MaterialStore] Erro ao carregar materiais do banco: %v", err)
		}
	}

	opts := export.Options{
		Identifier:       *identifier,
		Workers:          *threads,
		Strategy:         *strategy,
		GroupPerMaterial: *groupMtl,
		OffsetX:          *offsetX,
		OffsetY:          *offsetY,
		OffsetZ:          *offsetZ,
		Scale:            *scale,
	}

	if *region != "" {
		bounds, err := parseRegion(*region)
		if err != nil {
			log.Fatalf("Região inválida: %v", err)
		}
		opts.Bounds = &bounds
	}

	objFile, err := os.Create(*outputOBJ)
	if err != nil {
		log.Fatalf("Erro ao criar %s: %v", *outputOBJ, err)
	}
	defer objFile.Close()

	exporter := export.NewExporter(store, registry, opts)
	stats, materials, err := exporter.Run(ctx, objFile, *outputMTL)
	if err != nil {
		log.Fatalf("Export falhou: %v", err)
	}

	mtlFile, err := os.Create(*outputMTL)
	if err != nil {
		log.Fatalf("Erro ao criar %s: %v", *outputMTL, err)
	}
	defer mtlFile.Close()

	if err := matStore.WriteMTL(mtlFile, materials); err != nil {
		log.Fatalf("Erro ao escrever MTL: %v", err)
	}
	if err := matStore.SaveToDB(materials); err != nil {
		log.Printf("[MaterialStore] Erro ao salvar materiais no banco: %v", err)
	}

	log.Printf("[Export] %s + %s prontos (%d materiais, %d faces)",
		*outputOBJ, *outputMTL, len(materials), stats.Faces)
}

// loadRemote conecta no servidor de mundos e baixa a região populada
// inteira para o store local.
func loadRemote(ctx context.Context, store *mapdata.WorldStore, url string) error {
	remote := mapdata.NewRemoteWorld(url, store)
	if err := remote.Connect(ctx); err != nil {
		return err
	}
	defer remote.Close()

	info, err := remote.FetchMapInfo()
	if err != nil {
		return err
	}
	log.Printf("[Network] Mundo %q: chunks [%d,%d)x[%d,%d), y %d-%d",
		info.WorldName, info.MinChunkX, info.MaxChunkX, info.MinChunkZ, info.MaxChunkZ,
		info.MinY, info.MaxY)

	n, err := remote.FetchRange(ctx, info.MinChunkX, info.MinChunkZ, info.MaxChunkX, info.MaxChunkZ)
	if err != nil {
		return err
	}
	log.Printf("[Network] %d colunas baixadas.", n)
	return nil
}

// parseRegion interpreta "minX,minZ,maxX,maxZ" em coordenadas de bloco.
func parseRegion(s string) (export.Bounds, error) {
	var b export.Bounds
	n, err := fmt.Sscanf(s, "%d,%d,%d,%d", &b.MinX, &b.MinZ, &b.MaxX, &b.MaxZ)
	if err != nil || n != 4 {
		return b, fmt.Errorf("esperava \"minX,minZ,maxX,maxZ\", veio %q", s)
	}
	if b.MinX >= b.MaxX || b.MinZ >= b.MaxZ {
		return b, fmt.Errorf("região vazia: %q", s)
	}
	b.MinY, b.MaxY = 0, util.ChunkHeight
	return b, nil
}
