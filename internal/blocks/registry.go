package blocks

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A tabela padrão de blocos é embutida no binário; um arquivo externo
// pode sobrescrever ou estender entradas (mesmo formato).
//
//go:embed blocks.yaml
var defaultTable []byte

type blockEntry struct {
	ID        uint16   `yaml:"id"`
	Name      string   `yaml:"name"`
	Materials []string `yaml:"materials"`
	Occlusion string   `yaml:"occlusion"`
	Model     string   `yaml:"model"`
	BiomeTint bool     `yaml:"biome_tint"`
}

type blockTable struct {
	Blocks []blockEntry `yaml:"blocks"`
}

// Registry é a tabela de lookup id → tipo de bloco. Imutável após a
// carga, então a leitura concorrente pelos workers é segura sem lock.
type Registry struct {
	infos map[uint16]*BlockInfo
}

// modelFactories mapeia o nome do modelo na tabela YAML para o
// construtor da receita correspondente.
var modelFactories = map[string]func(r *Registry, info *BlockInfo) Model{
	"cube":   func(r *Registry, info *BlockInfo) Model { return &CubeModel{reg: r, info: info} },
	"slab":   func(r *Registry, info *BlockInfo) Model { return &SlabModel{reg: r, info: info} },
	"cross":  func(r *Registry, info *BlockInfo) Model { return &CrossModel{info: info} },
	"liquid": func(r *Registry, info *BlockInfo) Model { return &LiquidModel{reg: r, info: info} },
	"rails":  func(r *Registry, info *BlockInfo) Model { return &RailsModel{info: info} },
	"vines":  func(r *Registry, info *BlockInfo) Model { return &VinesModel{reg: r, info: info} },
	"none":   func(r *Registry, info *BlockInfo) Model { return nil },
}

// NewRegistry carrega a tabela embutida.
func NewRegistry() (*Registry, error) {
	r := &Registry{infos: make(map[uint16]*BlockInfo)}
	if err := r.load(defaultTable); err != nil {
		return nil, fmt.Errorf("tabela de blocos embutida inválida: %w", err)
	}
	return r, nil
}

// LoadOverrides mescla um arquivo de tabela externo: entradas com o mesmo
// id substituem as embutidas.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := r.load(data); err != nil {
		return fmt.Errorf("tabela de blocos %s inválida: %w", path, err)
	}
	return nil
}

func (r *Registry) load(data []byte) error {
	var table blockTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return err
	}

	for _, e := range table.Blocks {
		factory, ok := modelFactories[e.Model]
		if !ok {
			return fmt.Errorf("bloco %d (%s): modelo desconhecido %q", e.ID, e.Name, e.Model)
		}

		info := &BlockInfo{
			ID:        e.ID,
			Name:      e.Name,
			Materials: e.Materials,
			BiomeTint: e.BiomeTint,
		}
		if e.Occlusion == "full" {
			info.Occlusion = OcclusionFull
		}
		info.Model = factory(r, info)
		r.infos[e.ID] = info
	}
	return nil
}

// Get retorna o tipo registrado, ou nil para ids desconhecidos.
func (r *Registry) Get(id uint16) *BlockInfo {
	return r.infos[id]
}

// Resolve retorna o tipo do bloco, sintetizando um cubo genérico para
// ids não registrados: o material "block_<id>" é auto-registrado no pool
// na primeira face. Saída imperfeita em vez de falha.
func (r *Registry) Resolve(id uint16) *BlockInfo {
	if info, ok := r.infos[id]; ok {
		return info
	}
	info := &BlockInfo{
		ID:        id,
		Name:      fmt.Sprintf("block_%d", id),
		Occlusion: OcclusionFull,
	}
	info.Model = &CubeModel{reg: r, info: info}
	return info
}

// IsOpaque diz se o bloco esconde completamente a face encostada do
// vizinho. Ar (id 0) e ids desconhecidos não ocultam.
func (r *Registry) IsOpaque(id uint16) bool {
	if id == 0 {
		return false
	}
	info, ok := r.infos[id]
	return ok && info.Occlusion == OcclusionFull
}
