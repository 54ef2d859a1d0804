package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownCondition       = errors.New("unknown condition code")
	ErrUnknownAppointmentType = errors.New("unknown appointment type")
)

// DefaultTagStyle is rendered for condition codes that have no style entry.
var DefaultTagStyle = TagStyle{
	Background: "bg-gray-100",
	Text:       "text-gray-700",
	Border:     "border-gray-200",
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupStyle returns the style of a condition code. Codes are matched
// case-insensitively.
func LookupStyle(code string) (TagStyle, error) {
	s, ok := tagStyles[normalizeCode(code)]
	if !ok {
		return TagStyle{}, fmt.Errorf("%w: %q", ErrUnknownCondition, code)
	}
	return s, nil
}

// AppointmentTypeByValue finds an appointment type by its value token.
func AppointmentTypeByValue(value string) (AppointmentType, error) {
	for _, t := range appointmentTypes {
		if t.Value == value {
			return t, nil
		}
	}
	return AppointmentType{}, fmt.Errorf("%w: %q", ErrUnknownAppointmentType, value)
}

// Duration returns the slot length for an appointment value token.
func Duration(value string) (time.Duration, error) {
	t, err := AppointmentTypeByValue(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Duration) * time.Minute, nil
}

// ParseMicroarea splits a label such as "Microárea 3 - FABIANA" into its
// zone number and agent name.
func ParseMicroarea(label string) (Microarea, error) {
	head, agent, ok := strings.Cut(label, " - ")
	if !ok {
		return Microarea{}, fmt.Errorf("microarea label %q: missing separator", label)
	}
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Microarea{}, fmt.Errorf("microarea label %q: missing zone number", label)
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || n <= 0 {
		return Microarea{}, fmt.Errorf("microarea label %q: invalid zone number", label)
	}
	agent = strings.TrimSpace(agent)
	if agent == "" {
		return Microarea{}, fmt.Errorf("microarea label %q: missing agent", label)
	}
	return Microarea{Number: n, Agent: agent, Label: label}, nil
}

func buildMicroareas(labels []string) []Microarea {
	out := make([]Microarea, 0, len(labels))
	for _, l := range labels {
		m, err := ParseMicroarea(l)
		if err != nil {
			m = Microarea{Label: l}
		}
		out = append(out, m)
	}
	return out
}

// Provider serves condition styles to rendering code. Unlike LookupStyle it
// never fails: unmapped codes get DefaultTagStyle and a single warning per
// code.
type Provider struct {
	logger zerolog.Logger
	mu     sync.Mutex
	warned map[string]struct{}
	limit  int
}

// maxWarnedCodes bounds the set of remembered unmapped codes. When it fills
// up the set starts over, so a code may be warned about again.
const maxWarnedCodes = 256

func NewProvider(logger zerolog.Logger) *Provider {
	return &Provider{
		logger: logger,
		warned: make(map[string]struct{}),
		limit:  maxWarnedCodes,
	}
}

// StyleFor returns the style for code, falling back to DefaultTagStyle.
func (p *Provider) StyleFor(code string) TagStyle {
	s, err := LookupStyle(code)
	if err == nil {
		return s
	}

	key := normalizeCode(code)
	p.mu.Lock()
	_, seen := p.warned[key]
	if !seen {
		if len(p.warned) >= p.limit {
			p.warned = make(map[string]struct{})
		}
		p.warned[key] = struct{}{}
	}
	p.mu.Unlock()

	if !seen {
		p.logger.Warn().Str("condition", code).Msg("no style mapped for condition, using default")
	}
	return DefaultTagStyle
}
