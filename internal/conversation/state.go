package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer is the boundary to the external chat completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// SubmitOptions carries per-request overrides. Nil fields fall back to the
// state's settings.
type SubmitOptions struct {
	TokenBudget *int
	Temperature *float64
	Persona     string
}

// Exchange is the pair of turns appended by one submission. Failure is set
// when the assistant turn is a synthetic error marker.
type Exchange struct {
	User      Turn
	Assistant Turn
	Failure   *ServiceError
}

func (e *Exchange) Failed() bool { return e.Failure != nil }

type View struct {
	Turns         []Turn   `json:"turns"`
	Persona       string   `json:"persona"`
	SystemMessage string   `json:"system_message"`
	Custom        bool     `json:"custom"`
	Settings      Settings `json:"settings"`
}

var errNoCompleter = errors.New("no completion service configured")

// State is the conversation owned by a single browser session.
type State struct {
	// submitMu keeps one request in flight per session; mu guards the fields.
	submitMu sync.Mutex
	mu       sync.Mutex

	turns     []Turn
	persona   Persona
	settings  Settings
	completer Completer
	now       func() time.Time
}

func NewState(completer Completer, settings Settings) *State {
	return &State{
		turns:     []Turn{},
		settings:  settings,
		completer: completer,
		now:       time.Now,
	}
}

// SetPersona switches to a named preset. Unknown names keep the given name
// but use DefaultSystemMessage.
func (s *State) SetPersona(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = Named{PersonaName: name}
}

func (s *State) SetCustomMessage(text string) error {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return &ValidationError{Fields: map[string]string{
			"message": "Please enter a custom system message before applying.",
		}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = Custom{Message: msg}
	return nil
}

func (s *State) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// Reset empties the history and unsets the persona. Settings survive.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = []Turn{}
	s.persona = nil
}

// SubmitTurn sends userText to the completion service and appends the user
// turn and the assistant reply. Blank input is ignored and returns nil. Any
// completion failure is recorded as an error marker turn, so the returned
// error is only ever a *ValidationError for bad overrides.
func (s *State) SubmitTurn(ctx context.Context, userText string, opts SubmitOptions) (*Exchange, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, nil
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	s.mu.Lock()
	req, err := s.prepareLocked(userText, opts)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	reply, err := s.complete(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	ex := &Exchange{User: newTurn(RoleUser, userText, s.now())}
	if err != nil {
		ex.Failure = &ServiceError{Err: err}
		ex.Assistant = newTurn(RoleAssistant, ex.Failure.Marker(), s.now())
	} else {
		ex.Assistant = newTurn(RoleAssistant, strings.TrimSpace(reply), s.now())
	}
	s.turns = append(s.turns, ex.User, ex.Assistant)
	return ex, nil
}

func (s *State) prepareLocked(userText string, opts SubmitOptions) (CompletionRequest, error) {
	fields := map[string]string{}
	temperature := s.settings.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
		if msg := checkTemperature(temperature); msg != "" {
			fields["temperature"] = msg
		}
	}
	budget := s.settings.TokenBudget
	if opts.TokenBudget != nil {
		budget = *opts.TokenBudget
		if msg := checkTokenBudget(budget); msg != "" {
			fields["token_budget"] = msg
		}
	}
	if len(fields) > 0 {
		return CompletionRequest{}, &ValidationError{Fields: fields}
	}

	// The selector value re-establishes a persona lost to Reset; Custom
	// cannot be rebuilt without its text and falls through to the default.
	if s.persona == nil && opts.Persona != "" && opts.Persona != PersonaCustom {
		s.persona = Named{PersonaName: opts.Persona}
	}

	return CompletionRequest{
		Model:       s.settings.Model,
		Messages:    BuildMessages(s.systemMessageLocked(), s.turns, userText),
		Temperature: temperature,
		MaxTokens:   budget,
	}, nil
}

func (s *State) complete(ctx context.Context, req CompletionRequest) (reply string, err error) {
	if s.completer == nil {
		return "", errNoCompleter
	}
	return s.completer.Complete(ctx, req)
}

func (s *State) systemMessageLocked() string {
	if s.persona == nil {
		return DefaultSystemMessage
	}
	return s.persona.SystemMessage()
}

// SystemMessage returns the instruction the next request will carry.
func (s *State) SystemMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemMessageLocked()
}

// PendingMessages returns the request messages for a hypothetical next user
// turn, without the user turn itself.
func (s *State) PendingMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := BuildMessages(s.systemMessageLocked(), s.turns, "")
	return msgs[:len(msgs)-1]
}

func (s *State) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *State) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Snapshot copies the state for rendering. Persona and SystemMessage are
// empty while no persona is set.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Turns:    append([]Turn{}, s.turns...),
		Settings: s.settings,
	}
	if s.persona != nil {
		v.Persona = s.persona.Name()
		v.SystemMessage = s.persona.SystemMessage()
		_, v.Custom = s.persona.(Custom)
	}
	return v
}
