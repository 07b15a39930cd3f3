package points

import (
	"errors"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

var ErrUnknownPreference = errors.New("unknown preference")

func ValidatePreference(p model.Preference) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPreference, string(p))
	}
	return nil
}

// ModifierFor returns person's own modifier for the task, 0 when the person
// has not classified it. prefs may hold every person's rows for the task.
func ModifierFor(person string, prefs []model.TaskPreference) int {
	for _, p := range prefs {
		if p.PersonName == person {
			return p.Preference.Modifier()
		}
	}
	return 0
}

// PreferencesSum adds up every person's modifier. It is informational only;
// awards use ModifierFor.
func PreferencesSum(prefs []model.TaskPreference) int {
	sum := 0
	for _, p := range prefs {
		sum += p.Preference.Modifier()
	}
	return sum
}
