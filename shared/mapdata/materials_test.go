package mapdata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdirTemp replica t.Chdir(t.TempDir()) (indisponível antes do Go 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestMaterialColorLookup(t *testing.T) {
	s, err := NewMaterialStore()
	if err != nil {
		t.Fatalf("NewMaterialStore: %v", err)
	}

	stone := s.Color("stone")
	if stone == (MaterialColor{R: 150, G: 150, B: 150}) {
		t.Error("stone caiu no fallback cinza: tabela embutida não carregou")
	}

	// Sufixo de bioma herda a cor do material base.
	if s.Color("grass_top_b3") != s.Color("grass_top") {
		t.Error("material com sufixo de bioma deveria herdar a cor base")
	}

	// Desconhecido cai no fallback.
	if s.Color("nao_existe") != (MaterialColor{R: 150, G: 150, B: 150}) {
		t.Error("material desconhecido deveria cair no fallback cinza")
	}
}

func TestMaterialOverrides(t *testing.T) {
	s, err := NewMaterialStore()
	if err != nil {
		t.Fatalf("NewMaterialStore: %v", err)
	}

	path := filepath.Join(t.TempDir(), "override.yaml")
	os.WriteFile(path, []byte("- { name: stone, color: \"#ff0000\" }\n"), 0644)

	if err := s.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	if got := s.Color("stone"); got != (MaterialColor{R: 255}) {
		t.Errorf("override não aplicado: %+v", got)
	}
}

func TestMaterialPersistence(t *testing.T) {
	chdirTemp(t)

	store := NewWorldStore()
	if err := store.OpenInitialize("mundo_mat"); err != nil {
		t.Fatalf("OpenInitialize: %v", err)
	}
	defer store.Close()

	s, err := NewMaterialStore()
	if err != nil {
		t.Fatalf("NewMaterialStore: %v", err)
	}
	s.DB = store.DB

	// Persiste a cor resolvida de uma variante de bioma junto com um
	// material da tabela embutida.
	leaves := s.Color("leaves")
	if err := s.SaveToDB([]string{"stone", "leaves_b3"}); err != nil {
		t.Fatalf("SaveToDB: %v", err)
	}

	// Um store novo carrega do banco só o que o YAML não cobre.
	s2, err := NewMaterialStore()
	if err != nil {
		t.Fatalf("NewMaterialStore: %v", err)
	}
	s2.DB = store.DB
	if err := s2.LoadFromDB(); err != nil {
		t.Fatalf("LoadFromDB: %v", err)
	}

	if _, ok := s2.Colors["leaves_b3"]; !ok {
		t.Fatal("variante de bioma persistida não voltou do banco")
	}
	if got := s2.Colors["leaves_b3"]; got != leaves {
		t.Errorf("leaves_b3 = %+v, esperava a cor resolvida %+v", got, leaves)
	}
	if got := s2.Color("stone"); got != s.Color("stone") {
		t.Errorf("stone mudou ao carregar do banco: %+v", got)
	}
}

func TestWriteMTL(t *testing.T) {
	s, err := NewMaterialStore()
	if err != nil {
		t.Fatalf("NewMaterialStore: %v", err)
	}

	var buf bytes.Buffer
	if err := s.WriteMTL(&buf, []string{"water", "stone"}); err != nil {
		t.Fatalf("WriteMTL: %v", err)
	}

	out := buf.String()
	// Saída em ordem alfabética, uma entrada por material.
	si := strings.Index(out, "newmtl stone")
	wi := strings.Index(out, "newmtl water")
	if si < 0 || wi < 0 || si > wi {
		t.Errorf("MTL fora de ordem ou incompleto:\n%s", out)
	}
	if !strings.Contains(out, "Kd ") {
		t.Error("MTL sem cor difusa")
	}
}
