package conversation

const (
	PersonaHelpfulAssistant = "Helpful Assistant"
	PersonaFormalMentor     = "Formal Mentor"
	PersonaFunnyCompanion   = "Funny Companion"
	PersonaConciseExpert    = "Concise Expert"
	PersonaStoryteller      = "Storyteller"
	PersonaCustom           = "Custom"
)

// DefaultSystemMessage is used for unknown persona names and whenever no
// persona has been selected yet.
const DefaultSystemMessage = "You are a helpful AI assistant that provides clear answers."

var cannedMessages = map[string]string{
	PersonaHelpfulAssistant: "You are a helpful, polite assistant that provides clear and friendly answers.",
	PersonaFormalMentor:     "You are a formal mentor: concise, respectful, and educational in tone.",
	PersonaFunnyCompanion:   "You are a witty and playful companion, using light humor where appropriate.",
	PersonaConciseExpert:    "You are an expert who gives short, precise, technical answers with minimal fluff.",
	PersonaStoryteller:      "You are an imaginative storyteller who responds with vivid narrative and detail.",
}

// PersonaNames lists the selectable personas in display order.
func PersonaNames() []string {
	return []string{
		PersonaHelpfulAssistant,
		PersonaFormalMentor,
		PersonaFunnyCompanion,
		PersonaConciseExpert,
		PersonaStoryteller,
		PersonaCustom,
	}
}

// ResolvePersona maps a persona name to its canned system message.
func ResolvePersona(name string) string {
	if msg, ok := cannedMessages[name]; ok {
		return msg
	}
	return DefaultSystemMessage
}

// Persona is either a Named preset or a Custom user-supplied instruction.
type Persona interface {
	Name() string
	SystemMessage() string
	isPersona()
}

type Named struct {
	PersonaName string
}

func (p Named) Name() string { return p.PersonaName }
func (p Named) SystemMessage() string { return ResolvePersona(p.PersonaName) }
func (Named) isPersona() {}

type Custom struct {
	Message string
}

func (Custom) Name() string { return PersonaCustom }
func (p Custom) SystemMessage() string { return p.Message }
func (Custom) isPersona() {}
