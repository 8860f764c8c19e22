package models

import "persona-chat/internal/conversation"

// ChatRequest is the payload sent to the messages endpoint. Nil overrides
// use the session settings.
type ChatRequest struct {
	Message     string   `json:"message"`
	TokenBudget *int     `json:"token_budget,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Persona     string   `json:"persona,omitempty"`
}

// ChatResponse reports the turns appended by one submission.
type ChatResponse struct {
	Appended     []conversation.Turn `json:"appended"`
	Failed       bool                `json:"failed"`
	Conversation ConversationView    `json:"conversation"`
}

type PersonaRequest struct {
	Name string `json:"name"`
}

type CustomPersonaRequest struct {
	Message string `json:"message"`
}

type SettingsRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TokenBudget int     `json:"token_budget"`
}

// ConversationView is everything the browser needs to render a session.
type ConversationView struct {
	conversation.View
	PromptTokens   int    `json:"prompt_tokens"`
	TranscriptHTML string `json:"transcript_html"`
}

type SessionResponse struct {
	SessionID    string           `json:"session_id"`
	Token        string           `json:"token"`
	Conversation ConversationView `json:"conversation"`
}

type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// OptionsResponse describes the settings controls.
type OptionsResponse struct {
	Models       []string `json:"models"`
	DefaultModel string   `json:"default_model"`
	Personas     []string `json:"personas"`
	Temperature  Range    `json:"temperature"`
	TokenBudget  Range    `json:"token_budget"`
}
