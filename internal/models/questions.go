package models

// AnswerValue is the fixed vocabulary for observational answers.
type AnswerValue string

const (
	AnswerYes           AnswerValue = "yes"
	AnswerNo            AnswerValue = "no"
	AnswerNotSure       AnswerValue = "not_sure"
	AnswerNotApplicable AnswerValue = "not_applicable"
)

// AnswerOptions maps answer values to their display labels.
var AnswerOptions = map[AnswerValue]string{
	AnswerYes:           "Sí",
	AnswerNo:            "No",
	AnswerNotSure:       "No está seguro/a",
	AnswerNotApplicable: "No aplica",
}

// IsValidAnswer reports whether the given value belongs to the answer vocabulary.
func IsValidAnswer(value string) bool {
	_, ok := AnswerOptions[AnswerValue(value)]
	return ok
}

type ObservationQuestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type ObservationSubcategory struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Questions []ObservationQuestion `json:"questions"`
}

type ObservationCategory struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Questions     []ObservationQuestion    `json:"questions,omitempty"`
	Subcategories []ObservationSubcategory `json:"subcategories,omitempty"`
}

// FlatQuestion is a catalog entry with its category context resolved.
type FlatQuestion struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// ObservationCategories is the static observational question catalog. Order matters:
// it defines the sequence questions are presented in during an observation flow.
var ObservationCategories = []ObservationCategory{
	{
		ID:   "entry",
		Name: "INGRESO AL ESPACIO",
		Questions: []ObservationQuestion{
			{ID: "entry_on_time", Text: "Llega a horario"},
			{ID: "entry_resistance", Text: "Muestra resistencia"},
			{ID: "entry_manages", Text: "Logra ingresar"},
			{ID: "entry_greeting", Text: "Muestra indicador de saludo"},
		},
	},
	{
		ID:   "motivation",
		Name: "MOTIVACIÓN",
		Questions: []ObservationQuestion{
			{ID: "motivation_interest", Text: "Muestra interés"},
			{ID: "motivation_rejection", Text: "Muestra rechazo"},
			{ID: "motivation_repetition", Text: "Solicita o necesita repetición"},
		},
	},
	{
		ID:   "instruction",
		Name: "CONSIGNA",
		Questions: []ObservationQuestion{
			{ID: "instruction_keeps_mind", Text: "La mantiene en mente"},
			{ID: "instruction_concentration", Text: "Mantiene la concentración"},
			{ID: "instruction_requests_repetition", Text: "Solicita repetición"},
			{ID: "instruction_reiterated", Text: "Se le reitera la consigna"},
			{ID: "instruction_personal_emergent", Text: "Trae un emergente personal"},
		},
	},
	{
		ID:   "development",
		Name: "DESARROLLO",
		Subcategories: []ObservationSubcategory{
			{
				ID:   "development_beginning",
				Name: "Inicio",
				Questions: []ObservationQuestion{
					{ID: "dev_begin_interest", Text: "Muestra interés"},
				},
			},
			{
				ID:   "development_time",
				Name: "Tiempo",
				Questions: []ObservationQuestion{
					{ID: "dev_time_indifferent", Text: "Se muestra indiferente"},
					{ID: "dev_time_delayed", Text: "Inicio demorado"},
					{ID: "dev_time_expected", Text: "Inicio esperado o establecido"},
				},
			},
			{
				ID:   "development_materials",
				Name: "Materiales",
				Questions: []ObservationQuestion{
					{ID: "dev_mat_explores", Text: "Explora los materiales"},
					{ID: "dev_mat_innovative", Text: "Los utiliza de manera innovadora/creativa"},
					{ID: "dev_mat_repeats", Text: "Repite el mismo uso"},
					{ID: "dev_mat_needs_support", Text: "Necesita apoyo para utilizarlos"},
					{ID: "dev_mat_full_use", Text: "Hace uso pleno de ellos"},
					{ID: "dev_mat_difficulty", Text: "Muestra dificultad para manipularlos"},
					{ID: "dev_mat_asks_other", Text: "Pide otros materiales"},
				},
			},
			{
				ID:   "development_creativity",
				Name: "Creatividad",
				Questions: []ObservationQuestion{
					{ID: "dev_cre_present", Text: "Está presente / conectado/a"},
					{ID: "dev_cre_focused", Text: "Se muestra concentrado/a y trabaja"},
					{ID: "dev_cre_tolerance", Text: "Muestra tolerancia a la frustración"},
				},
			},
			{
				ID:   "development_space",
				Name: "En el espacio",
				Questions: []ObservationQuestion{
					{ID: "dev_space_asks_help", Text: "Pide ayuda"},
					{ID: "dev_space_communicates", Text: "Se comunica"},
					{ID: "dev_space_isolates", Text: "Se aísla"},
					{ID: "dev_space_helps_others", Text: "Ayuda a otros/as"},
					{ID: "dev_space_connection_at", Text: "Establece vínculo con el/la AT"},
				},
			},
		},
	},
	{
		ID:   "closure",
		Name: "CIERRE",
		Questions: []ObservationQuestion{
			{ID: "closure_accepts", Text: "Acepta su propia producción"},
			{ID: "closure_verbalizes", Text: "Pone en palabras lo producido"},
			{ID: "closure_denotative", Text: "Hace asociaciones denotativas"},
			{ID: "closure_connotative", Text: "Expresa asociaciones connotativas"},
			{ID: "closure_mood_change", Text: "Muestra cambios de ánimo respecto del inicio"},
			{ID: "closure_bodily_change", Text: "Muestra cambios de actitud corporal respecto del inicio"},
		},
	},
	{
		ID:   "group",
		Name: "GRUPO",
		Questions: []ObservationQuestion{
			{ID: "group_respects_turn", Text: "Respeta el turno de habla de los/as otros/as"},
			{ID: "group_indifferent", Text: "Se muestra indiferente a la palabra de los/as otros/as"},
			{ID: "group_waits_turn", Text: "Logra esperar su turno"},
			{ID: "group_registers_presence", Text: "Registra la presencia de otras personas"},
			{ID: "group_interacts", Text: "Interactúa con otros/as en el espacio"},
		},
	},
	{
		ID:   "group_climate",
		Name: "CLIMA GRUPAL",
		Questions: []ObservationQuestion{
			{ID: "climate_favorable", Text: "Favorable"},
			{ID: "climate_disruptive", Text: "Disruptivo"},
			{ID: "climate_indifferent", Text: "Indiferente"},
			{ID: "climate_participatory", Text: "Participativo"},
		},
	},
}

var (
	flatQuestions []FlatQuestion
	questionsByID map[string]FlatQuestion
)

func init() {
	questionsByID = make(map[string]FlatQuestion)
	for _, category := range ObservationCategories {
		for _, q := range category.Questions {
			fq := FlatQuestion{ID: q.ID, Text: q.Text, Category: category.Name}
			flatQuestions = append(flatQuestions, fq)
			questionsByID[q.ID] = fq
		}
		for _, sub := range category.Subcategories {
			for _, q := range sub.Questions {
				fq := FlatQuestion{ID: q.ID, Text: q.Text, Category: category.Name, Subcategory: sub.Name}
				flatQuestions = append(flatQuestions, fq)
				questionsByID[q.ID] = fq
			}
		}
	}
}

// AllQuestions returns the catalog flattened in presentation order.
func AllQuestions() []FlatQuestion {
	out := make([]FlatQuestion, len(flatQuestions))
	copy(out, flatQuestions)
	return out
}

// QuestionByIndex returns the question at the given position in the flat list.
func QuestionByIndex(index int) (FlatQuestion, bool) {
	if index < 0 || index >= len(flatQuestions) {
		return FlatQuestion{}, false
	}
	return flatQuestions[index], true
}

// QuestionByID looks up a catalog question by its identifier.
func QuestionByID(id string) (FlatQuestion, bool) {
	q, ok := questionsByID[id]
	return q, ok
}

// TotalQuestionCount returns the number of questions in the catalog.
func TotalQuestionCount() int {
	return len(flatQuestions)
}
