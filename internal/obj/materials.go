package obj

// MaterialMap mapeia nomes de material para ids inteiros densos e
// estáveis, atribuídos na ordem do primeiro uso (começando em 1). Um nome
// desconhecido registra um id novo em vez de falhar (create-on-first-use).
// O acesso não é sincronizado: o dono (OBJFile) já é
// acessado de forma serializada pelo pipeline.
type MaterialMap struct {
	ids   map[string]int
	names []string
}

// NewMaterialMap cria um pool de materiais vazio.
func NewMaterialMap() *MaterialMap {
	return &MaterialMap{ids: make(map[string]int)}
}

// ID retorna o id do material, registrando-o se for a primeira vez.
func (m *MaterialMap) ID(name string) int {
	if id, ok := m.ids[name]; ok {
		return id
	}
	m.names = append(m.names, name)
	id := len(m.names)
	m.ids[name] = id
	return id
}

// Name é o inverso de ID, usado na serialização. Retorna "" para ids
// fora do intervalo.
func (m *MaterialMap) Name(id int) string {
	if id < 1 || id > len(m.names) {
		return ""
	}
	return m.names[id-1]
}

// Names retorna todos os nomes registrados, na ordem dos ids.
func (m *MaterialMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len retorna a quantidade de materiais registrados.
func (m *MaterialMap) Len() int {
	return len(m.names)
}
