package protocol

type recKey struct {
	protocol string
	label    string
}

var genericRecommendation = []string{
	"Consultar literatura especializada e discutir o caso em supervisão clínica.",
}

var recommendations = map[recKey][]string{
	{"cars2", "Sem sintomas / mínimos"}: {
		"Manter acompanhamento do desenvolvimento nas consultas de rotina.",
		"Reavaliar caso surjam novas queixas da família ou da escola.",
	},
	{"cars2", "Leve a moderado"}: {
		"Encaminhar para avaliação multidisciplinar (psicologia, fonoaudiologia e terapia ocupacional).",
		"Iniciar intervenção comportamental com foco em comunicação social.",
		"Orientar a família sobre estratégias de rotina e antecipação.",
	},
	{"cars2", "Grave"}: {
		"Priorizar intervenção intensiva (ABA) com carga horária semanal elevada.",
		"Avaliar necessidade de acompanhamento médico e medicamentoso.",
		"Planejar suporte escolar com mediação.",
	},
	{"mchat_r", "Baixo risco"}: {
		"Nenhuma ação imediata; repetir a triagem aos 24 meses se aplicada antes.",
	},
	{"mchat_r", "Risco moderado"}: {
		"Aplicar a entrevista de seguimento M-CHAT-R/F.",
		"Se a pontuação persistir em 2 ou mais, encaminhar para avaliação diagnóstica.",
	},
	{"mchat_r", "Alto risco"}: {
		"Encaminhar imediatamente para avaliação diagnóstica.",
		"Iniciar intervenção precoce sem aguardar o diagnóstico.",
	},
	{"abc", "Alta probabilidade"}: {
		"Confirmar com avaliação diagnóstica (CARS-2, ADOS-2).",
		"Elaborar plano terapêutico individualizado.",
	},
}

// Recommendations returns the static recommendations for a classification,
// falling back to a generic one for combinations without an entry.
func Recommendations(protocolID, label string) []string {
	recs, ok := recommendations[recKey{protocolID, label}]
	if !ok {
		recs = genericRecommendation
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}
