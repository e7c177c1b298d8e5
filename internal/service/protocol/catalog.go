package protocol

import (
	"fmt"
	"sort"
)

// Item is one scored question or domain of a protocol. Valid scores are
// Min, Min+Step, ... up to Max.
type Item struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
}

// Band is an inclusive classification range of the total score.
type Band struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

type Protocol struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
	// Step is the resolution of the total; adjacent bands are exactly one
	// step apart.
	Step  float64 `json:"step"`
	Bands []Band  `json:"bands"`
}

var catalog = map[string]Protocol{}

func init() {
	for _, p := range []Protocol{cars2(), mchatR(), abc()} {
		if err := Validate(p); err != nil {
			panic(fmt.Sprintf("protocol %s: %v", p.ID, err))
		}
		catalog[p.ID] = p
	}
}

// Catalog returns every protocol ordered by id.
func Catalog() []Protocol {
	out := make([]Protocol, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func Lookup(id string) (Protocol, error) {
	p, ok := catalog[id]
	if !ok {
		return Protocol{}, ErrUnknownProtocol
	}
	return p, nil
}

func uniformItems(prefix string, labels []string, min, max, step float64) []Item {
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{ID: fmt.Sprintf("%s%d", prefix, i+1), Label: l, Min: min, Max: max, Step: step}
	}
	return items
}

func cars2() Protocol {
	return Protocol{
		ID:          "cars2",
		Name:        "CARS-2 ST",
		Description: "Childhood Autism Rating Scale, segunda edição, versão padrão.",
		Items: uniformItems("item", []string{
			"Relacionamento com pessoas",
			"Imitação",
			"Resposta emocional",
			"Uso do corpo",
			"Uso de objetos",
			"Adaptação a mudanças",
			"Resposta visual",
			"Resposta auditiva",
			"Paladar, olfato e tato",
			"Medo ou nervosismo",
			"Comunicação verbal",
			"Comunicação não verbal",
			"Nível de atividade",
			"Nível e consistência da resposta intelectual",
			"Impressões gerais",
		}, 1, 4, 0.5),
		Step: 0.5,
		Bands: []Band{
			{Min: 15, Max: 29.5, Label: "Sem sintomas / mínimos", Description: "Sintomas mínimos ou ausentes de TEA."},
			{Min: 30, Max: 36.5, Label: "Leve a moderado", Description: "Sintomas leves a moderados de TEA."},
			{Min: 37, Max: 60, Label: "Grave", Description: "Sintomas graves de TEA."},
		},
	}
}

func mchatR() Protocol {
	labels := make([]string, 20)
	for i := range labels {
		labels[i] = fmt.Sprintf("Pergunta %d (resposta de risco = 1)", i+1)
	}
	return Protocol{
		ID:          "mchat_r",
		Name:        "M-CHAT-R",
		Description: "Modified Checklist for Autism in Toddlers, revisado. Triagem de 16 a 30 meses.",
		Items:       uniformItems("q", labels, 0, 1, 1),
		Step:        1,
		Bands: []Band{
			{Min: 0, Max: 2, Label: "Baixo risco", Description: "Rastreio negativo; repetir aos 24 meses se aplicado antes."},
			{Min: 3, Max: 7, Label: "Risco moderado", Description: "Aplicar a entrevista de seguimento (M-CHAT-R/F)."},
			{Min: 8, Max: 20, Label: "Alto risco", Description: "Encaminhar para avaliação diagnóstica e intervenção precoce."},
		},
	}
}

// abc is scored per area: each area total is the sum of its weighted items
// (weights 1 to 4), so the area maxima add up to 158.
func abc() Protocol {
	return Protocol{
		ID:          "abc",
		Name:        "ABC / ICA",
		Description: "Autism Behavior Checklist (Inventário de Comportamentos Autísticos).",
		Items: []Item{
			{ID: "sensorial", Label: "Estímulo sensorial", Min: 0, Max: 26, Step: 1},
			{ID: "relacional", Label: "Relacionamento", Min: 0, Max: 38, Step: 1},
			{ID: "corpo_objetos", Label: "Uso do corpo e objetos", Min: 0, Max: 38, Step: 1},
			{ID: "linguagem", Label: "Linguagem", Min: 0, Max: 31, Step: 1},
			{ID: "pessoal_social", Label: "Desenvolvimento pessoal e social", Min: 0, Max: 25, Step: 1},
		},
		Step: 1,
		Bands: []Band{
			{Min: 0, Max: 46, Label: "Baixa probabilidade", Description: "Pontuação abaixo do ponto de corte para TEA."},
			{Min: 47, Max: 67, Label: "Probabilidade moderada", Description: "Faixa duvidosa; complementar com outros instrumentos."},
			{Min: 68, Max: 158, Label: "Alta probabilidade", Description: "Pontuação compatível com TEA."},
		},
	}
}
