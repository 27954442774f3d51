package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/log"
	"github.com/adcraftlabs/adcraft/internal/transport"
)

// Guard failures. These are returned to the caller for logging/UI hints;
// transport failures are additionally surfaced as assistant-role messages
// in the session log.
var (
	// ErrEmptyBrief indicates confirmation was requested with no non-empty field.
	ErrEmptyBrief = errors.New("brief has no content to confirm")

	// ErrNoPendingBrief indicates there is no parsed brief awaiting confirmation.
	ErrNoPendingBrief = errors.New("no pending brief")

	// ErrBriefNotConfirmed indicates product selection was requested before
	// the brief was confirmed.
	ErrBriefNotConfirmed = errors.New("brief not confirmed yet")

	// ErrNoProductsSelected indicates generation was requested with an empty
	// selection.
	ErrNoProductsSelected = errors.New("no products selected")

	// ErrGenerationInFlight indicates a generation is already running. The
	// second trigger is ignored rather than queued or overlapped.
	ErrGenerationInFlight = errors.New("generation already in flight")
)

// Backend is the transport surface the state machine drives. Implemented by
// *transport.Client; narrowed to an interface so transition logic is
// testable against a scripted fake.
type Backend interface {
	ParseBrief(ctx context.Context, text, conversationID string) (content.CreativeBrief, error)
	ConfirmBrief(ctx context.Context, brief content.CreativeBrief, conversationID string) (content.CreativeBrief, error)
	SelectProducts(ctx context.Context, request string, current []content.Product, conversationID string) (transport.Selection, error)
	Generate(ctx context.Context, brief content.CreativeBrief, products []content.Product, generateImages bool, conversationID string) <-chan transport.GenerationEvent
}

// Controller owns one Session and applies the legal stage transitions. All
// methods are safe for use from Bubble Tea command goroutines; internally a
// single mutex serializes mutation, matching the one-outstanding-call
// discipline the UI enforces.
type Controller struct {
	mu       sync.Mutex
	backend  Backend
	logger   log.Logger
	session  Session
	selected *ProductSet
}

// NewController creates a controller with a fresh session.
func NewController(backend Backend, generateImages bool, logger log.Logger) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("conversation.NewController: backend is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Controller{
		backend:  backend,
		logger:   logger.With("component", "conversation"),
		session:  newSession(generateImages),
		selected: NewProductSet(),
	}, nil
}

// Snapshot returns a copy of the current session for rendering. The copy
// shares no mutable state with the controller.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Session {
	s := c.session
	s.Messages = append([]content.ChatMessage(nil), c.session.Messages...)
	s.Selected = c.selected.Products()
	if c.session.PendingBrief != nil {
		b := *c.session.PendingBrief
		s.PendingBrief = &b
	}
	if c.session.ConfirmedBrief != nil {
		b := *c.session.ConfirmedBrief
		s.ConfirmedBrief = &b
	}
	if c.session.Generated != nil {
		g := *c.session.Generated
		g.Violations = append([]content.ComplianceViolation(nil), c.session.Generated.Violations...)
		s.Generated = &g
	}
	return s
}

// ConversationID returns the active conversation id.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// Summary projects the live session into a list entry for the history
// gateway's merge rule.
func (c *Controller) Summary() content.ConversationSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Summary()
}

// appendLocked adds a message to the log. Messages are append-only.
func (c *Controller) appendLocked(msg content.ChatMessage) {
	c.session.Messages = append(c.session.Messages, msg)
}

// failLocked records a transport failure as an assistant-role message
// without changing stage, per the retry-in-place error policy.
func (c *Controller) failLocked(text string, err error) {
	c.logger.Warn(text, "error", err, "stage", c.session.Stage.String())
	c.appendLocked(content.NewChatMessage(content.RoleAssistant,
		fmt.Sprintf("%s (%v) Please try again.", text, err)))
}

// SendText handles a free-text user turn. From welcome or brief_pending it
// is a brief-authoring turn: the text goes to the parsing agent and the
// result becomes (or replaces) the pending brief. A parse failure keeps the
// current stage and surfaces the error in the chat log.
func (c *Controller) SendText(ctx context.Context, text string) error {
	c.mu.Lock()
	convID := c.session.ID
	c.appendLocked(content.NewChatMessage(content.RoleUser, text))
	c.mu.Unlock()

	brief, err := c.backend.ParseBrief(ctx, text, convID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("I couldn't turn that into a brief.", err)
		return err
	}

	c.session.PendingBrief = &brief
	c.session.Stage = StageBriefPending
	c.appendLocked(content.AgentMessage("brief",
		"I've drafted a structured brief from your input. Review it and confirm, or keep refining it in chat."))
	return nil
}

// Confirm freezes the pending brief. Guard: a pending brief must exist and
// have at least one non-empty field. Confirmation is idempotent on the
// backend, so the returned brief always reflects the generation input.
func (c *Controller) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Stage != StageBriefPending || c.session.PendingBrief == nil {
		c.mu.Unlock()
		return ErrNoPendingBrief
	}
	if c.session.PendingBrief.IsEmpty() {
		c.mu.Unlock()
		return ErrEmptyBrief
	}
	pending := *c.session.PendingBrief
	convID := c.session.ID
	c.mu.Unlock()

	confirmed, err := c.backend.ConfirmBrief(ctx, pending, convID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("Confirming the brief failed.", err)
		return err
	}

	c.session.ConfirmedBrief = &confirmed
	c.session.PendingBrief = nil
	c.session.Stage = StageBriefConfirmed
	c.appendLocked(content.AgentMessage("brief",
		"Brief confirmed. Tell me which products to feature, for example \"add the sage green paint\"."))
	return nil
}

// StartOver discards the brief, the product selection, and any generated
// content, returning to the welcome stage. The message log and conversation
// id survive. Legal from any stage.
func (c *Controller) StartOver() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.PendingBrief = nil
	c.session.ConfirmedBrief = nil
	c.session.Generated = nil
	c.session.StatusLine = ""
	c.selected = NewProductSet()
	c.session.Stage = StageWelcome
	c.appendLocked(content.AgentMessage("brief",
		"Brief discarded. Describe what you'd like to promote and we'll start fresh."))
}

// Select sends a natural-language selection request and merges the result
// into the selection set according to the reported action. A selection
// failure keeps the current stage.
func (c *Controller) Select(ctx context.Context, request string) error {
	c.mu.Lock()
	if c.session.Stage < StageBriefConfirmed {
		c.mu.Unlock()
		return ErrBriefNotConfirmed
	}
	current := c.selected.Products()
	convID := c.session.ID
	c.appendLocked(content.NewChatMessage(content.RoleUser, request))
	c.mu.Unlock()

	sel, err := c.backend.SelectProducts(ctx, request, current, convID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked("Product selection failed.", err)
		return err
	}

	c.mergeSelectionLocked(sel)

	msg := sel.Message
	if msg == "" {
		msg = fmt.Sprintf("Selection updated (%s). %d product(s) selected.", sel.Action, c.selected.Len())
	}
	c.appendLocked(content.AgentMessage("products", msg))

	if c.session.Stage == StageBriefConfirmed {
		c.session.Stage = StageProductReview
	}
	return nil
}

// mergeSelectionLocked applies the server-reported mutation. For added and
// removed, the response carries the affected products; for replaced it
// carries the new full selection. Unknown actions defer to the server's
// list when one is present; the server's view of the selection wins.
func (c *Controller) mergeSelectionLocked(sel transport.Selection) {
	switch sel.Action {
	case content.ActionAdded:
		for _, p := range sel.Products {
			c.selected.Add(p)
		}
	case content.ActionRemoved:
		for _, p := range sel.Products {
			c.selected.Remove(p.Key())
		}
	case content.ActionReplaced:
		c.selected.Replace(sel.Products)
	case content.ActionNoMatch:
		// Selection unchanged.
	default:
		if len(sel.Products) > 0 {
			c.selected.Replace(sel.Products)
		}
	}
}

// Generate starts a generation run and returns the event channel to
// consume. Guards: a confirmed brief, at least one selected product, and no
// generation already in flight; a second trigger is ignored, not queued.
// The caller forwards each event to ApplyGenerationEvent.
func (c *Controller) Generate(ctx context.Context) (<-chan transport.GenerationEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.ConfirmedBrief == nil {
		return nil, ErrBriefNotConfirmed
	}
	if c.selected.Len() == 0 {
		return nil, ErrNoProductsSelected
	}
	if c.session.Generating {
		return nil, ErrGenerationInFlight
	}

	c.session.Generating = true
	c.session.StatusLine = "Starting generation..."
	events := c.backend.Generate(ctx, *c.session.ConfirmedBrief, c.selected.Products(),
		c.session.GenerateImages, c.session.ID)
	return events, nil
}

// ApplyGenerationEvent folds one transport event into the session. Status
// and heartbeat events update the transient status line; the terminal
// result or error moves the session to content_preview. Generation
// failures do not revert the stage; the error lands on the content record
// so the preview UI can offer an in-place retry.
func (c *Controller) ApplyGenerationEvent(ev transport.GenerationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case ev.Status != "":
		c.session.StatusLine = ev.Status

	case ev.Heartbeat != "":
		c.session.StatusLine = ev.Heartbeat

	case ev.Result != nil:
		c.session.Generated = ev.Result
		c.session.Stage = StageContentPreview
		c.session.Generating = false
		c.session.StatusLine = ""
		c.appendLocked(content.AgentMessage("generation", c.resultMessageLocked(ev.Result)))

	case ev.Err != nil:
		c.session.Generated = &content.GeneratedContent{Error: generationErrorText(ev.Err)}
		c.session.Stage = StageContentPreview
		c.session.Generating = false
		c.session.StatusLine = ""
		c.appendLocked(content.AgentMessage("generation", c.session.Generated.Error))
	}
}

// CancelGeneration marks the in-flight run as abandoned. The caller is
// responsible for canceling the context driving the poll loop; the server
// task keeps running to completion (no server-side cancel exists).
func (c *Controller) CancelGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Generating {
		return
	}
	c.session.Generating = false
	c.session.StatusLine = ""
	c.appendLocked(content.AgentMessage("generation", "Generation canceled. The selection is unchanged, generate again when ready."))
}

// resultMessageLocked summarizes the generation outcome for the chat log.
func (c *Controller) resultMessageLocked(g *content.GeneratedContent) string {
	switch {
	case g.Error != "":
		return "Generation finished with an error: " + g.Error
	case g.RequiresModification:
		return fmt.Sprintf("Content generated, but compliance review flagged %d issue(s) that must be fixed before use.", len(g.Violations))
	case len(g.Violations) > 0:
		return fmt.Sprintf("Content generated with %d advisory note(s) from compliance review.", len(g.Violations))
	default:
		return "Content generated and approved by compliance review."
	}
}

// generationErrorText maps a terminal generation error to user-facing text,
// distinguishing safety-filter rejections from generic failures.
func generationErrorText(err error) string {
	var genErr *transport.GenerationError
	switch {
	case errors.As(err, &genErr) && content.ContentFiltered(genErr.Message):
		return "The content safety system blocked this request. Adjust the brief wording and regenerate."
	case errors.As(err, &genErr):
		msg := genErr.Message
		if msg == "" {
			msg = "the backend reported a failure"
		}
		return "Generation failed: " + msg + ". You can regenerate from here."
	case errors.Is(err, transport.ErrGenerationTimeout):
		return "Generation timed out after 2 minutes. The agents may be busy, try regenerating."
	case errors.Is(err, context.Canceled):
		return "Generation canceled."
	default:
		return "Generation failed: " + err.Error() + ". You can regenerate from here."
	}
}

// Reset clears all session state and allocates a new conversation id.
// Legal from any stage.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = newSession(c.session.GenerateImages)
	c.selected = NewProductSet()
}

// SetGenerateImages toggles image generation for subsequent runs.
func (c *Controller) SetGenerateImages(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.GenerateImages = on
}

// Restore loads a server-stored conversation as the active session. The
// workflow restarts at the welcome stage with the message log intact;
// brief and selection state live server-side per conversation and are
// re-established through chat turns.
func (c *Controller) Restore(conv content.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = newSession(c.session.GenerateImages)
	c.selected = NewProductSet()
	if conv.ID != "" {
		c.session.ID = conv.ID
	}
	c.session.Messages = append([]content.ChatMessage(nil), conv.Messages...)
}
