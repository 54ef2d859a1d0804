// Package catalog holds the reference data shared by the scheduling, patient
// and prescription screens: professions, microareas, clinical condition tags
// with their display styles, appointment and prescription types, and the
// application identity and changelog.
//
// All tables are package-level values built at init and never mutated.
// Accessors return copies so callers cannot alter them.
package catalog

// AppInfo identifies the application.
type AppInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Year       int    `json:"year"`
	FooterText string `json:"footerText"`
}

// Microarea is a territorial zone of the team, covered by one community
// health agent.
type Microarea struct {
	Number int    `json:"number"`
	Agent  string `json:"agent"`
	Label  string `json:"label"`
}

// TagStyle is the Tailwind class triple used to render a condition badge.
type TagStyle struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

// Classes joins the triple into a single class attribute value.
func (s TagStyle) Classes() string {
	return s.Background + " " + s.Text + " " + s.Border
}

// IsZero reports whether any part of the triple is missing.
func (s TagStyle) IsZero() bool {
	return s.Background == "" || s.Text == "" || s.Border == ""
}

// ConditionTag pairs a condition code with its badge style.
type ConditionTag struct {
	Code  string   `json:"code"`
	Style TagStyle `json:"style"`
}

// AppointmentType describes a bookable slot kind.
type AppointmentType struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Duration int    `json:"duration"` // minutes
}

// PrescriptionClass is the controlled-substance class of a prescription form.
type PrescriptionClass string

const (
	PrescriptionComum PrescriptionClass = "Comum"
	PrescriptionC     PrescriptionClass = "C"
	PrescriptionB     PrescriptionClass = "B"
	PrescriptionA     PrescriptionClass = "A"
)

// Valid reports whether c is one of the four known classes.
func (c PrescriptionClass) Valid() bool {
	switch c {
	case PrescriptionComum, PrescriptionC, PrescriptionB, PrescriptionA:
		return true
	}
	return false
}

// PrescriptionType describes a prescription form.
type PrescriptionType struct {
	Label string            `json:"label"`
	Value PrescriptionClass `json:"value"`
}

// ReleaseType classifies a changelog entry.
type ReleaseType string

const (
	ReleaseMajor ReleaseType = "major"
	ReleaseMinor ReleaseType = "minor"
	ReleasePatch ReleaseType = "patch"
)

// Version is one changelog entry. Date uses the dd/mm/yyyy layout shown in the UI.
type Version struct {
	Version string      `json:"version"`
	Date    string      `json:"date"`
	Type    ReleaseType `json:"type"`
	Changes []string    `json:"changes"`
}

var appInfo = AppInfo{
	Name:       "Gestão eSF",
	Version:    "1.6.0",
	Year:       2026,
	FooterText: "Sistema desenvolvido para ajudar equipes de Saúde da Família na gestão do cuidado.",
}

var professions = []string{
	"Médico",
	"Enfermeira",
	"Técnica de Enfermagem",
}

var microareaLabels = []string{
	"Microárea 1 - ANGÉLICA",
	"Microárea 2 - JOCILENE",
	"Microárea 3 - FABIANA",
	"Microárea 4 - MONALISA",
	"Microárea 5 - JAILTON",
	"Microárea 6 - MARIA ROSA",
}

var conditions = []string{
	"HAS", "DM", "GESTANTE", "SM", "ACAMADO", "TABAGISTA",
	"OBESIDADE", "FIBROMIALGIA", "TEA", "DPOC", "AVC", "ASMA",
}

var tagStyles = map[string]TagStyle{
	"HAS":          {"bg-red-100", "text-red-700", "border-red-200"},
	"DM":           {"bg-blue-100", "text-blue-700", "border-blue-200"},
	"GESTANTE":     {"bg-pink-100", "text-pink-700", "border-pink-200"},
	"SM":           {"bg-purple-100", "text-purple-700", "border-purple-200"},
	"ACAMADO":      {"bg-slate-200", "text-slate-700", "border-slate-300"},
	"TABAGISTA":    {"bg-orange-100", "text-orange-700", "border-orange-200"},
	"OBESIDADE":    {"bg-amber-100", "text-amber-700", "border-amber-200"},
	"FIBROMIALGIA": {"bg-fuchsia-100", "text-fuchsia-700", "border-fuchsia-200"},
	"TEA":          {"bg-teal-100", "text-teal-700", "border-teal-200"},
	"DPOC":         {"bg-stone-100", "text-stone-700", "border-stone-200"},
	"AVC":          {"bg-rose-100", "text-rose-700", "border-rose-200"},
	"ASMA":         {"bg-sky-100", "text-sky-700", "border-sky-200"},
}

var appointmentTypes = []AppointmentType{
	{Label: "Rotina (20m)", Value: "Rotina", Duration: 20},
	{Label: "Pré-Natal (40m)", Value: "Pré-Natal", Duration: 40},
	{Label: "Primeira Consulta (30m)", Value: "Primeira Consulta", Duration: 30},
	{Label: "Saúde Mental (40m)", Value: "Saúde Mental", Duration: 40},
	{Label: "Exames (15m)", Value: "Exames", Duration: 15},
	{Label: "Procedimento (40m)", Value: "Infiltração", Duration: 40},
	{Label: "Esporão (20m)", Value: "Esporão", Duration: 20},
	{Label: "Lâmina (30m)", Value: "Lâmina", Duration: 30},
	{Label: "Puericultura (30m)", Value: "Puericultura", Duration: 30},
	{Label: "Renovação (5m)", Value: "Renovação", Duration: 5},
}

var prescriptionTypes = []PrescriptionType{
	{Label: "Comum (Branca 1 via)", Value: PrescriptionComum},
	{Label: "Controle Especial (Branca C - 2 vias)", Value: PrescriptionC},
	{Label: "Notificação B (Azul)", Value: PrescriptionB},
	{Label: "Notificação A (Amarela)", Value: PrescriptionA},
}

// Newest first.
var changelog = []Version{
	{
		Version: "1.5.0",
		Date:    "07/02/2026",
		Type:    ReleaseMajor,
		Changes: []string{
			"🚀 Refatoração completa do sistema para Vue.js + Vite.",
			"✨ Nova interface mais rápida e reativa, com inclusão da aba \"Mural da Equipe\" para avisos, lembretes e comunicados internos.",
			"🛡️ Segurança reforçada com TypeScript.",
			"📋 Prontuário visual integrado ao card do paciente e ícone de \"observação\" nos blocos de agendamento, visando menos poluição visual.",
		},
	},
	{
		Version: "1.4.2",
		Date:    "05/02/2026",
		Type:    ReleaseMinor,
		Changes: []string{
			"🌙 Adicionado Modo Escuro (Dark Mode).",
			"📱 Melhorias na responsividade para celulares.",
			"🔒 Bloqueio manual de dias na agenda de acordo com o profissional selecionado no filtro.",
			"📊 Gráficos de relatórios básicos.",
		},
	},
	{
		Version: "1.3.0",
		Date:    "24/01/2026",
		Type:    ReleaseMajor,
		Changes: []string{
			"🎉 Lançamento inicial da plataforma Gestão eSF para uso da equipe 10.",
			"📅 Agenda básica e cadastro de pacientes.",
			"☁️ Integração com Firebase para segurança e banco de dados.",
		},
	},
}

// microareas is parsed once from microareaLabels; a label that does not
// parse is reported by Validate and kept with Number 0.
var microareas = buildMicroareas(microareaLabels)

func App() AppInfo { return appInfo }

func Professions() []string { return append([]string(nil), professions...) }

func Microareas() []Microarea { return append([]Microarea(nil), microareas...) }

func Conditions() []string { return append([]string(nil), conditions...) }

// ConditionTags returns every condition with its style, in display order.
func ConditionTags() []ConditionTag {
	out := make([]ConditionTag, 0, len(conditions))
	for _, code := range conditions {
		out = append(out, ConditionTag{Code: code, Style: tagStyles[code]})
	}
	return out
}

// TagStyles returns a copy of the code → style mapping.
func TagStyles() map[string]TagStyle {
	out := make(map[string]TagStyle, len(tagStyles))
	for k, v := range tagStyles {
		out[k] = v
	}
	return out
}

func AppointmentTypes() []AppointmentType {
	return append([]AppointmentType(nil), appointmentTypes...)
}

func PrescriptionTypes() []PrescriptionType {
	return append([]PrescriptionType(nil), prescriptionTypes...)
}

// Changelog returns the release history, newest first.
func Changelog() []Version {
	out := make([]Version, len(changelog))
	for i, v := range changelog {
		v.Changes = append([]string(nil), v.Changes...)
		out[i] = v
	}
	return out
}
