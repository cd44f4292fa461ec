package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"MineVision/shared/config"
	"MineVision/shared/mapdata"
	"MineVision/shared/proto/mvnet"
	"MineVision/shared/util"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	log.Printf("Cliente registrado: %s", conn.RemoteAddr())
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if lock, ok := h.clients[conn]; ok {
		lock.Lock()
		delete(h.clients, conn)
		conn.Close()
		lock.Unlock()
		log.Printf("Cliente desregistrado: %s", conn.RemoteAddr())
	}
	h.mu.Unlock()
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, env *mvnet.Envelope) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, env.Marshal())
}

// Server atende pedidos de MapInfo e de faixas de chunks sobre o store.
type Server struct {
	hub   *Hub
	store *mapdata.WorldStore
	name  string
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Erro no upgrade do WebSocket: %v", err)
		return
	}

	s.hub.register(conn)
	defer s.hub.unregister(conn)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[PANIC] Conexão %s: %v", conn.RemoteAddr(), rec)
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Conexão perdida: %v", err)
			return
		}

		var env mvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("Envelope malformado de %s: %v", conn.RemoteAddr(), err)
			continue
		}

		switch env.Type {
		case mvnet.TypeMapInfoRequest:
			s.sendMapInfo(conn)
		case mvnet.TypeRangeRequest:
			var req mvnet.RangeRequest
			if err := req.Unmarshal(env.Payload); err != nil {
				log.Printf("RangeRequest malformado: %v", err)
				continue
			}
			s.sendRange(conn, &req)
		default:
			log.Printf("Mensagem inesperada tipo %d de %s", env.Type, conn.RemoteAddr())
		}
	}
}

func (s *Server) sendMapInfo(conn *websocket.Conn) {
	rect := s.store.BoundsXZ()
	minY, maxY, _ := s.store.BoundsY()

	info := mvnet.MapInfo{
		WorldName: s.name,
		MinChunkX: int32(rect.Min.X),
		MinChunkZ: int32(rect.Min.Y),
		MaxChunkX: int32(rect.Max.X),
		MaxChunkZ: int32(rect.Max.Y),
		MinY:      minY,
		MaxY:      maxY,
	}

	err := s.hub.WriteSafe(conn, &mvnet.Envelope{
		Type:    mvnet.TypeMapInfo,
		Payload: info.Marshal(),
	})
	if err != nil {
		log.Printf("Erro ao enviar MapInfo: %v", err)
	}
}

// sendRange responde um RangeRequest com a sequência de colunas e o
// RangeDone final. Colunas fora do store são simplesmente omitidas.
func (s *Server) sendRange(conn *websocket.Conn, req *mvnet.RangeRequest) {
	count := int32(0)
	for cz := req.MinChunkZ; cz < req.MaxChunkZ; cz++ {
		for cx := req.MinChunkX; cx < req.MaxChunkX; cx++ {
			chunk, ok := s.store.GetChunk(util.NewChunkCoord(cx, cz))
			if !ok {
				continue
			}

			msg := mvnet.ChunkData{ChunkX: cx, ChunkZ: cz, MTime: chunk.MTime}
			if chunk.IsEmpty {
				msg.Empty = true
			} else {
				blob, err := mapdata.EncodeChunk(chunk)
				if err != nil {
					log.Printf("Erro ao serializar coluna (%d, %d): %v", cx, cz, err)
					continue
				}
				msg.Blob = blob
			}

			err := s.hub.WriteSafe(conn, &mvnet.Envelope{
				Type:    mvnet.TypeChunkData,
				Payload: msg.Marshal(),
			})
			if err != nil {
				log.Printf("Erro ao enviar coluna (%d, %d): %v", cx, cz, err)
				return
			}
			count++
		}
	}

	done := mvnet.RangeDone{Count: count}
	if err := s.hub.WriteSafe(conn, &mvnet.Envelope{
		Type:    mvnet.TypeRangeDone,
		Payload: done.Marshal(),
	}); err != nil {
		log.Printf("Erro ao enviar RangeDone: %v", err)
	}

	log.Printf("Faixa [%d,%d)x[%d,%d) atendida: %d colunas para %s",
		req.MinChunkX, req.MaxChunkX, req.MinChunkZ, req.MaxChunkZ, count, conn.RemoteAddr())
}

func main() {
	// Garante que o working directory é o diretório do executável, para
	// que caminhos relativos (saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			mw := io.MultiWriter(os.Stdout, logFile)
			log.SetOutput(mw)
		}
	}

	cfg := config.Load()
	worldName := flag.String("world", cfg.WorldName, "nome do save no SQLite")
	listenAddr := flag.String("listen", cfg.ListenAddr, "endereço de escuta")
	flag.Parse()

	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      MineVision SERVER v0.1.0        ║")
	log.Println("╚══════════════════════════════════════╝")

	store := mapdata.NewWorldStore()
	defer store.Close()

	log.Printf("Carregando mundo %q do SQLite...", *worldName)
	if err := store.LoadAll(*worldName); err != nil {
		log.Fatalf("Erro fatal: não foi possível carregar o mundo: %v", err)
	}
	if store.ChunkCount() == 0 {
		log.Printf("Aviso: mundo %q sem colunas salvas.", *worldName)
	}

	hub := newHub()
	server := &Server{hub: hub, store: store, name: *worldName}

	http.HandleFunc("/ws", server.handleWS)
	log.Printf("Servidor de mundos escutando em %s (%d colunas)", *listenAddr, store.ChunkCount())
	if err := http.ListenAndServe(*listenAddr, nil); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}
