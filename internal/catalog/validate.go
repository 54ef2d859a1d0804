package catalog

import (
	"errors"
	"fmt"
)

// Validate checks the invariants of the built-in tables. It is run once at
// startup and by the "catalog validate" command.
func Validate() error {
	return validate(conditions, tagStyles, appointmentTypes, prescriptionTypes, microareaLabels)
}

func validate(
	conds []string,
	styles map[string]TagStyle,
	appts []AppointmentType,
	rx []PrescriptionType,
	areas []string,
) error {
	var errs []error

	seen := make(map[string]bool, len(conds))
	for _, c := range conds {
		if seen[c] {
			errs = append(errs, fmt.Errorf("condition %q listed twice", c))
		}
		seen[c] = true
		s, ok := styles[c]
		if !ok {
			errs = append(errs, fmt.Errorf("condition %q has no style", c))
			continue
		}
		if s.IsZero() {
			errs = append(errs, fmt.Errorf("condition %q has an incomplete style", c))
		}
	}
	for code := range styles {
		if !seen[code] {
			errs = append(errs, fmt.Errorf("style %q has no matching condition", code))
		}
	}

	values := make(map[string]bool, len(appts))
	for _, a := range appts {
		if a.Duration <= 0 {
			errs = append(errs, fmt.Errorf("appointment type %q: duration must be positive, got %d", a.Value, a.Duration))
		}
		if a.Value == "" {
			errs = append(errs, fmt.Errorf("appointment type %q: empty value", a.Label))
		}
		if values[a.Value] {
			errs = append(errs, fmt.Errorf("appointment type %q listed twice", a.Value))
		}
		values[a.Value] = true
	}

	for _, p := range rx {
		if !p.Value.Valid() {
			errs = append(errs, fmt.Errorf("prescription type %q: invalid class %q", p.Label, p.Value))
		}
	}

	for _, l := range areas {
		if _, err := ParseMicroarea(l); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
