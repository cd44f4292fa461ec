package mapdata

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"MineVision/shared/proto/mvnet"
	"MineVision/shared/util"

	"github.com/gorilla/websocket"
)

// RemoteWorld busca colunas de um servidor de mundos via websocket e as
// armazena no WorldStore local. O uso é síncrono: o exportador pede a
// região inteira antes de começar a varredura.
type RemoteWorld struct {
	conn      *websocket.Conn
	url       string
	store     *WorldStore
	connected bool
	mu        sync.Mutex
}

func NewRemoteWorld(url string, store *WorldStore) *RemoteWorld {
	return &RemoteWorld{
		url:   url,
		store: store,
	}
}

// Connect disca para o servidor com retentativas.
func (r *RemoteWorld) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, r.url)
		r.conn, _, err = dialer.DialContext(ctx, r.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", maxRetries, err)
		return err
	}

	r.connected = true
	return nil
}

// Close encerra a conexão.
func (r *RemoteWorld) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.connected = false
	}
}

func (r *RemoteWorld) send(msgType mvnet.EnvelopeType, payload []byte) error {
	env := mvnet.Envelope{Type: msgType, Payload: payload}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteMessage(websocket.BinaryMessage, env.Marshal())
}

// readEnvelope bloqueia até a próxima mensagem binária.
func (r *RemoteWorld) readEnvelope() (*mvnet.Envelope, error) {
	_, message, err := r.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var env mvnet.Envelope
	if err := env.Unmarshal(message); err != nil {
		return nil, fmt.Errorf("envelope malformado: %w", err)
	}
	return &env, nil
}

// FetchMapInfo pergunta ao servidor os limites populados do mundo.
func (r *RemoteWorld) FetchMapInfo() (*mvnet.MapInfo, error) {
	if err := r.send(mvnet.TypeMapInfoRequest, nil); err != nil {
		return nil, err
	}

	env, err := r.readEnvelope()
	if err != nil {
		return nil, err
	}
	if env.Type != mvnet.TypeMapInfo {
		return nil, fmt.Errorf("esperava MapInfo, veio tipo %d", env.Type)
	}

	var info mvnet.MapInfo
	if err := info.Unmarshal(env.Payload); err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchRange baixa todas as colunas do retângulo de chunks (Max exclusivo)
// para o WorldStore. Retorna quantas colunas não-vazias chegaram.
func (r *RemoteWorld) FetchRange(ctx context.Context, minX, minZ, maxX, maxZ int32) (int, error) {
	req := mvnet.RangeRequest{
		MinChunkX: minX, MinChunkZ: minZ,
		MaxChunkX: maxX, MaxChunkZ: maxZ,
	}
	if err := r.send(mvnet.TypeRangeRequest, req.Marshal()); err != nil {
		return 0, err
	}

	received := 0
	for {
		if err := ctx.Err(); err != nil {
			return received, err
		}

		env, err := r.readEnvelope()
		if err != nil {
			return received, err
		}

		switch env.Type {
		case mvnet.TypeChunkData:
			var msg mvnet.ChunkData
			if err := msg.Unmarshal(env.Payload); err != nil {
				log.Printf("[Network] ChunkData malformado, ignorando: %v", err)
				continue
			}
			if err := r.storeChunkData(&msg); err != nil {
				log.Printf("[Network] Coluna (%d, %d) corrompida: %v", msg.ChunkX, msg.ChunkZ, err)
				continue
			}
			received++
		case mvnet.TypeRangeDone:
			var done mvnet.RangeDone
			if err := done.Unmarshal(env.Payload); err == nil && int(done.Count) != received {
				log.Printf("[Network] Servidor anunciou %d colunas, chegaram %d", done.Count, received)
			}
			return received, nil
		default:
			log.Printf("[Network] Mensagem inesperada tipo %d, ignorando", env.Type)
		}
	}
}

// storeChunkData decodifica e registra uma coluna no store local.
func (r *RemoteWorld) storeChunkData(msg *mvnet.ChunkData) error {
	coord := util.NewChunkCoord(msg.ChunkX, msg.ChunkZ)

	if msg.Empty {
		c := NewChunk(coord)
		c.IsEmpty = true
		c.MTime = msg.MTime
		r.store.StoreChunk(c)
		return nil
	}

	chunk, err := DecodeChunk(coord, msg.Blob, msg.MTime)
	if err != nil {
		return err
	}
	r.store.StoreChunk(chunk)
	return nil
}
