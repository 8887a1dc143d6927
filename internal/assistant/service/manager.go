package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
	"github.com/umlhub/umlhub-backend/internal/logging"
)

// DurableStore is the Postgres-backed conversation tier.
type DurableStore interface {
	Load(ctx context.Context, diagramID, userID string) ([]domain.Turn, bool, error)
	Append(ctx context.Context, diagramID, userID string, turns []domain.Turn) error
	Clear(ctx context.Context, diagramID, userID string) error
}

// VolatileStore is the in-process session tier.
type VolatileStore interface {
	Load(sessionID string) []domain.Turn
	Save(sessionID string, turns []domain.Turn)
	Clear(sessionID string)
}

// Completer runs one model completion over a turn list.
type Completer interface {
	Execute(ctx context.Context, turns []domain.Turn, modelID string) (domain.Turn, error)
}

// CodeApplier pushes an accepted code reply into the diagram render
// pipeline. It is expected to enforce ownership itself.
type CodeApplier interface {
	ApplyCode(ctx context.Context, ownerID, diagramID, source string) error
}

// DiagramAccess checks that a user may read a diagram before a conversation
// is durably bound to it.
type DiagramAccess interface {
	CanRead(ctx context.Context, userID, diagramID string) error
}

type ExchangeRequest struct {
	Prompt      string
	CurrentCode string
	DiagramType string
	Model       string
	DiagramID   string
	UserID      string
	SessionID   string
}

type ExchangeResult struct {
	Response       string
	IsCodeResponse bool
	History        []domain.Turn
	SessionID      string
}

// Manager drives diagram-bound conversations: it seeds the system preamble
// on first contact, runs the completion, classifies the reply and keeps both
// storage tiers within the history window.
type Manager struct {
	durable  DurableStore
	volatile VolatileStore
	llm      Completer
	applier  CodeApplier
	access   DiagramAccess
	maxTurns int
	now      func() time.Time
}

func NewManager(durable DurableStore, volatile VolatileStore, llm Completer, applier CodeApplier, access DiagramAccess, maxTurns int) *Manager {
	return &Manager{
		durable:  durable,
		volatile: volatile,
		llm:      llm,
		applier:  applier,
		access:   access,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

var codeIntentKeywords = []string{"code", "diagram", "modify", "change", "update"}

// Exchange runs one prompt/reply round trip. The durable tier is
// authoritative when the request carries both a diagram id and a verified
// user; everything else lives in a session keyed by a server-issued id. A
// durable write failure degrades to the volatile tier and is logged, never
// surfaced.
func (m *Manager) Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error) {
	logger := logging.NewLogger(ctx)

	identity := domain.Identity{DiagramID: req.DiagramID, UserID: req.UserID, SessionID: req.SessionID}
	if identity.SessionID == "" {
		identity.SessionID = uuid.NewString()
	}

	// a conversation is only durably bound to a diagram the user can read;
	// anything else stays in the session tier
	if identity.Durable() && m.access != nil {
		if err := m.access.CanRead(ctx, identity.UserID, identity.DiagramID); err != nil {
			logger.LogWarnf("conversation_bind", "user %s denied diagram %s, keeping session %s volatile: %v",
				identity.UserID, identity.DiagramID, identity.SessionID, err)
			identity.DiagramID = ""
		}
	}

	history, degraded := m.loadHistory(ctx, identity, logger)

	seeded := false
	if len(history) == 0 || history[0].Role != domain.RoleSystem {
		preamble := domain.Turn{
			Role:      domain.RoleSystem,
			Content:   buildPreamble(req.DiagramType, req.CurrentCode),
			Timestamp: m.now().UTC(),
		}
		history = append([]domain.Turn{preamble}, history...)
		seeded = true
	}

	userTurn := domain.Turn{
		Role:      domain.RoleUser,
		Content:   req.Prompt,
		Timestamp: m.now().UTC(),
	}
	history = append(history, userTurn)

	assistantTurn, err := m.llm.Execute(ctx, history, req.Model)
	if err != nil {
		return nil, err
	}
	assistantTurn.IsCodeResponse = classifyReply(assistantTurn.Content, req.Prompt)

	history = append(history, assistantTurn)
	trimmed := domain.Trim(history, m.maxTurns)

	m.persist(ctx, identity, seeded, degraded, userTurn, assistantTurn, trimmed, logger)
	m.applyCode(ctx, identity, assistantTurn, logger)

	return &ExchangeResult{
		Response:       assistantTurn.Content,
		IsCodeResponse: assistantTurn.IsCodeResponse,
		History:        trimmed,
		SessionID:      identity.SessionID,
	}, nil
}

// Clear drops the conversation for the given identity from whichever tier
// owns it.
func (m *Manager) Clear(ctx context.Context, identity domain.Identity) error {
	if identity.SessionID != "" {
		m.volatile.Clear(identity.SessionID)
	}
	if identity.Durable() {
		return m.durable.Clear(ctx, identity.DiagramID, identity.UserID)
	}
	return nil
}

// loadHistory resolves the authoritative turn log. An existing durable
// conversation always wins; a durable identity without one falls back to the
// session tier, because a prior exchange may have degraded there after a
// failed append. degraded reports that fallback so persist can migrate the
// whole history instead of just this exchange's delta.
func (m *Manager) loadHistory(ctx context.Context, identity domain.Identity, logger *logging.Logger) (turns []domain.Turn, degraded bool) {
	if identity.Durable() {
		turns, found, err := m.durable.Load(ctx, identity.DiagramID, identity.UserID)
		if err != nil {
			logger.LogErrorf("conversation_load", "durable load failed for diagram %s, falling back to session %s: %v",
				identity.DiagramID, identity.SessionID, err)
			return m.volatile.Load(identity.SessionID), true
		}
		if found {
			return turns, false
		}
		session := m.volatile.Load(identity.SessionID)
		return session, len(session) > 0
	}
	return m.volatile.Load(identity.SessionID), false
}

func (m *Manager) persist(ctx context.Context, identity domain.Identity, seeded, degraded bool, userTurn, assistantTurn domain.Turn, trimmed []domain.Turn, logger *logging.Logger) {
	if identity.Durable() {
		var added []domain.Turn
		if degraded {
			// session-held turns were never durably written; migrate them all
			added = trimmed
		} else {
			added = make([]domain.Turn, 0, 3)
			if seeded {
				added = append(added, trimmed[0])
			}
			added = append(added, userTurn, assistantTurn)
		}

		if err := m.durable.Append(ctx, identity.DiagramID, identity.UserID, added); err != nil {
			logger.LogErrorf("conversation_persist", "durable append failed for diagram %s, degrading to session %s: %v",
				identity.DiagramID, identity.SessionID, err)
			m.volatile.Save(identity.SessionID, trimmed)
			return
		}
		if degraded {
			m.volatile.Clear(identity.SessionID)
		}
		return
	}
	m.volatile.Save(identity.SessionID, trimmed)
}

// applyCode hands a marker-complete code reply to the diagram pipeline. Only
// replies that actually carry both markers are applied; keyword-classified
// prose must never overwrite diagram source. A render failure here is logged
// and the exchange still succeeds, the reply was already delivered.
func (m *Manager) applyCode(ctx context.Context, identity domain.Identity, assistantTurn domain.Turn, logger *logging.Logger) {
	if m.applier == nil || !identity.Durable() || !assistantTurn.IsCodeResponse {
		return
	}
	if !hasDiagramMarkers(assistantTurn.Content) {
		return
	}
	if err := m.applier.ApplyCode(ctx, identity.UserID, identity.DiagramID, assistantTurn.Content); err != nil {
		logger.LogErrorf("conversation_apply_code", "diagram_id=%s apply failed: %v", identity.DiagramID, err)
	}
}

func hasDiagramMarkers(content string) bool {
	return strings.Contains(content, "@startuml") && strings.Contains(content, "@enduml")
}

// classifyReply marks a reply as diagram code when it carries both PlantUML
// markers, or when the prompt itself asked for code.
func classifyReply(reply, prompt string) bool {
	if hasDiagramMarkers(reply) {
		return true
	}
	lower := strings.ToLower(prompt)
	for _, kw := range codeIntentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func buildPreamble(diagramType, currentCode string) string {
	var sb strings.Builder
	sb.WriteString("You are a PlantUML diagram assistant. ")
	sb.WriteString("When asked for diagram code, reply with complete PlantUML source between @startuml and @enduml. ")
	sb.WriteString("For everything else, answer concisely in plain text.")
	if diagramType != "" {
		fmt.Fprintf(&sb, "\n\nThe user is working on a %s diagram.", diagramType)
	}
	if currentCode != "" {
		fmt.Fprintf(&sb, "\n\nCurrent diagram source:\n%s", currentCode)
	}
	return sb.String()
}
