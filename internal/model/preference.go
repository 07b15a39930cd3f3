package model

import "time"

// Preference is a person's difficulty classification of a task.
type Preference string

const (
	PreferenceOdio        Preference = "odio"
	PreferenceMeCuesta    Preference = "me_cuesta"
	PreferenceIndiferente Preference = "indiferente"
	PreferenceNoMeCuesta  Preference = "no_me_cuesta"
	PreferenceMeGusta     Preference = "me_gusta"
)

// Bucket describes one difficulty bucket of the classification board.
type Bucket struct {
	Value       Preference `json:"value"`
	Label       string     `json:"label"`
	Emoji       string     `json:"emoji"`
	Modifier    int        `json:"modifier"`
	Description string     `json:"description"`
}

// Buckets lists the five buckets from most disliked to most enjoyed.
var Buckets = []Bucket{
	{Value: PreferenceOdio, Label: "Lo detesto", Emoji: "🤮", Modifier: 10, Description: "Me cuesta mucho trabajo"},
	{Value: PreferenceMeCuesta, Label: "Me cuesta", Emoji: "😮‍💨", Modifier: 5, Description: "Requiere esfuerzo"},
	{Value: PreferenceIndiferente, Label: "Normal", Emoji: "😐", Modifier: 0, Description: "Ni fácil ni difícil"},
	{Value: PreferenceNoMeCuesta, Label: "Fácil", Emoji: "😊", Modifier: -5, Description: "Me resulta sencillo"},
	{Value: PreferenceMeGusta, Label: "Me encanta", Emoji: "🤩", Modifier: -10, Description: "Disfruto haciéndolo"},
}

// Valid reports whether p is one of the five known buckets.
func (p Preference) Valid() bool {
	_, ok := p.bucket()
	return ok
}

// Modifier returns the fixed point adjustment for p, 0 for unknown values.
func (p Preference) Modifier() int {
	b, _ := p.bucket()
	return b.Modifier
}

func (p Preference) bucket() (Bucket, bool) {
	for _, b := range Buckets {
		if b.Value == p {
			return b, true
		}
	}
	return Bucket{}, false
}

type TaskPreference struct {
	ID             int64      `json:"id"`
	TaskID         string     `json:"task_id"`
	PersonName     string     `json:"person_name"`
	Preference     Preference `json:"preference"`
	PointsModifier int        `json:"points_modifier"`
	CreatedAt      time.Time  `json:"created_at"`
}
