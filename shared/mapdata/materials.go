package mapdata

import (
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed materials.yaml
var defaultMaterialsYAML []byte

// MaterialColor é a cor difusa de um material no MTL.
type MaterialColor struct {
	R, G, B uint8
}

// MaterialStore gerencia as cores dos materiais usadas na escrita do MTL.
// As cores vêm de uma tabela YAML embutida, com override opcional em disco.
type MaterialStore struct {
	mu sync.RWMutex

	// Colors mapeia nome do material -> cor difusa
	Colors map[string]MaterialColor

	// DB é o cache SQLite do mundo; nil quando o mundo não tem banco aberto.
	DB *gorm.DB
}

// materialEntry é o formato de uma linha da tabela YAML.
type materialEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // "#rrggbb"
}

// NewMaterialStore carrega a tabela embutida de cores.
func NewMaterialStore() (*MaterialStore, error) {
	s := &MaterialStore{Colors: make(map[string]MaterialColor)}
	if err := s.loadYAML(defaultMaterialsYAML); err != nil {
		return nil, fmt.Errorf("tabela de materiais embutida inválida: %w", err)
	}
	return s, nil
}

// LoadOverrides mescla um arquivo YAML do usuário sobre a tabela embutida.
func (s *MaterialStore) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := s.loadYAML(data); err != nil {
		return fmt.Errorf("tabela de materiais %s inválida: %w", path, err)
	}
	log.Printf("[MaterialStore] Overrides de materiais carregados de %s", path)
	return nil
}

func (s *MaterialStore) loadYAML(data []byte) error {
	var entries []materialEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		c, err := parseHexColor(e.Color)
		if err != nil {
			return fmt.Errorf("material %q: %w", e.Name, err)
		}
		s.Colors[e.Name] = c
	}
	return nil
}

// parseHexColor interpreta "#rrggbb".
func parseHexColor(v string) (MaterialColor, error) {
	v = strings.TrimPrefix(v, "#")
	if len(v) != 6 {
		return MaterialColor{}, fmt.Errorf("cor %q fora do formato #rrggbb", v)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(v, "%02x%02x%02x", &r, &g, &b); err != nil {
		return MaterialColor{}, fmt.Errorf("cor %q fora do formato #rrggbb", v)
	}
	return MaterialColor{R: r, G: g, B: b}, nil
}

// Color retorna a cor registrada para um material. Materiais de bioma
// ("grass_top_b3") caem no material base; desconhecidos ganham cinza.
func (s *MaterialStore) Color(name string) MaterialColor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.Colors[name]; ok {
		return c
	}

	// Remove o sufixo de bioma e tenta de novo
	if i := strings.LastIndex(name, "_b"); i > 0 {
		if c, ok := s.Colors[name[:i]]; ok {
			return c
		}
	}

	return MaterialColor{R: 150, G: 150, B: 150} // Fallback absoluto
}

// LoadFromDB carrega as cores persistidas no SQLite para o cache. As
// tabelas YAML têm prioridade: só entram nomes ainda desconhecidos, como
// variantes de bioma resolvidas em exports anteriores.
func (s *MaterialStore) LoadFromDB() error {
	if s.DB == nil {
		return nil
	}

	var models []MaterialModel
	if err := s.DB.Find(&models).Error; err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := 0
	for _, m := range models {
		if _, ok := s.Colors[m.Name]; ok {
			continue
		}
		s.Colors[m.Name] = MaterialColor{R: m.R, G: m.G, B: m.B}
		loaded++
	}
	log.Printf("[MaterialStore] %d materiais carregados do SQLite.", loaded)
	return nil
}

// SaveToDB persiste no banco as cores resolvidas dos materiais usados.
func (s *MaterialStore) SaveToDB(names []string) error {
	if s.DB == nil || len(names) == 0 {
		return nil
	}

	models := make([]MaterialModel, 0, len(names))
	for _, name := range names {
		c := s.Color(name)
		models = append(models, MaterialModel{Name: name, R: c.R, G: c.G, B: c.B})
	}

	// Upsert em lote
	if err := s.DB.Save(&models).Error; err != nil {
		log.Printf("[MaterialStore] Erro ao persistir materiais: %v", err)
		return err
	}
	log.Printf("[MaterialStore] %d materiais salvos no banco.", len(models))
	return nil
}

// WriteMTL escreve um arquivo de materiais Wavefront com uma entrada por
// nome, em ordem alfabética para saída determinística.
func (s *MaterialStore) WriteMTL(w io.Writer, names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	for _, name := range sorted {
		c := s.Color(name)
		_, err := fmt.Fprintf(w, "newmtl %s\nKd %.4f %.4f %.4f\n\n",
			name, float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		if err != nil {
			return err
		}
	}
	return nil
}
