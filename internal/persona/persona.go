package persona

import "strings"

// SystemTemplate is the base instruction every companion speaks from.
// Placeholders are substituted from the companion's attributes.
const SystemTemplate = "You are an AI companion. Adopt the given persona.\n" +
	"Name: {name}\nAge: {age}\nGender: {gender}\nBirth country: {birth_country}\n" +
	"Personality: {personality}\nEducation: {education}\nBackground: {background}\n\n" +
	"Speak concisely and empathetically. Remember key facts about the user across turns."

// Persona holds the attribute values fed into the template. Zero values
// are replaced with defaults at render time.
type Persona struct {
	Name         string
	Age          string
	Gender       string
	BirthCountry string
	Personality  string
	Education    string
	Background   string

	// SystemPrompt, when non-empty, replaces the rendered template entirely.
	SystemPrompt string
}

func (p Persona) withDefaults() Persona {
	if p.Age == "" {
		p.Age = "unknown"
	}
	if p.Gender == "" {
		p.Gender = "unspecified"
	}
	if p.BirthCountry == "" {
		p.BirthCountry = "unspecified"
	}
	if p.Personality == "" {
		p.Personality = "friendly"
	}
	if p.Education == "" {
		p.Education = "unspecified"
	}
	return p
}

// SystemMessage renders the system instruction for this persona.
func (p Persona) SystemMessage() string {
	if strings.TrimSpace(p.SystemPrompt) != "" {
		return p.SystemPrompt
	}
	p = p.withDefaults()
	r := strings.NewReplacer(
		"{name}", p.Name,
		"{age}", p.Age,
		"{gender}", p.Gender,
		"{birth_country}", p.BirthCountry,
		"{personality}", p.Personality,
		"{education}", p.Education,
		"{background}", p.Background,
	)
	return r.Replace(SystemTemplate)
}
