package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do MineVision.
type Config struct {
	// Mundo de entrada
	WorldName string `json:"world_name"` // nome do save no SQLite local
	ServerURL string `json:"server_url"` // servidor de mundos (vazio = só local)

	// Saída
	OutputOBJ  string `json:"output_obj"`
	OutputMTL  string `json:"output_mtl"`
	Identifier string `json:"identifier"` // nome do objeto no OBJ

	// Geometria
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	OffsetZ float64 `json:"offset_z"`

	// Export
	MesherThreads    int    `json:"mesher_threads"`
	Strategy         string `json:"strategy"` // pipelined | sharded
	GroupPerMaterial bool   `json:"group_per_material"`

	// Tabelas de dados (vazio = embutidas)
	BlocksPath    string `json:"blocks_path"`
	MaterialsPath string `json:"materials_path"`

	// Servidor de mundos
	ListenAddr string `json:"listen_addr"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WorldName: "world",
		ServerURL: "",

		OutputOBJ:  "world.obj",
		OutputMTL:  "world.mtl",
		Identifier: "world",

		Scale:   1.0,
		OffsetX: 0,
		OffsetY: 0,
		OffsetZ: 0,

		MesherThreads:    4,
		Strategy:         "pipelined",
		GroupPerMaterial: false,

		ListenAddr: ":8080",
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
