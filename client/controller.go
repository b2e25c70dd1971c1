package client

import (
	"context"
	"sync"

	"character-manager/core/protocol"

	"go.uber.org/zap"
)

// State is the live view controller's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// CharacterAPI is the resource API surface the controller drives.
type CharacterAPI interface {
	Character(ctx context.Context, id uint) (*Character, error)
	CreateAbility(ctx context.Context, characterID uint, name string, score int) (*protocol.Ability, error)
	UpdateAbility(ctx context.Context, characterID, abilityID uint, score int) (*protocol.Ability, error)
	DeleteAbility(ctx context.Context, characterID, abilityID uint) error
	CreateEquipment(ctx context.Context, characterID uint, name string, quantity int) (*protocol.Equipment, error)
	UpdateEquipment(ctx context.Context, characterID, equipmentID uint, name string, quantity int) (*protocol.Equipment, error)
	DeleteEquipment(ctx context.Context, characterID, equipmentID uint) error
}

// RoomSession is the notification channel surface the controller drives.
type RoomSession interface {
	Join(characterID uint) error
	Leave(characterID uint) error
	Events() <-chan protocol.Message
	Close() error
}

// Controller is a per-character live view session.
type Controller struct {
	characterID uint
	api         CharacterAPI
	session     RoomSession
	reconciler  Reconciler
	logger      *zap.Logger

	// OnChange, when set before Start, is invoked with a snapshot copy after
	// every reconciled change. Called from the controller's event loop.
	OnChange func(Character)

	mu      sync.Mutex
	state   State
	char    *Character
	lastErr string
	stopped bool

	loopDone chan struct{}
}

// NewController creates a controller for one character.
func NewController(characterID uint, api CharacterAPI, session RoomSession, rec Reconciler, logger *zap.Logger) *Controller {
	return &Controller{
		characterID: characterID,
		api:         api,
		session:     session,
		reconciler:  rec,
		logger:      logger,
		state:       StateIdle,
		loopDone:    make(chan struct{}),
	}
}

// Start joins the character's room, loads the aggregate and begins applying
// room events. Joining before the load means no event can slip between the
// snapshot and the subscription. A failed initial load moves the controller
// to StateError and is returned; the view stays blocked until retried.
func (c *Controller) Start(ctx context.Context) error {
	c.setState(StateLoading)

	if err := c.session.Join(c.characterID); err != nil {
		c.failInitial(err)
		return err
	}

	char, err := c.api.Character(ctx, c.characterID)
	if err != nil {
		c.failInitial(err)
		return err
	}

	c.mu.Lock()
	c.char = char
	c.state = StateReady
	c.mu.Unlock()
	c.emit()

	go c.loop(ctx)
	return nil
}

// Stop leaves the room, then closes the transport. Events and in-flight fetch
// results arriving after Stop are discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	// Leave before disconnecting so the hub's membership stays accurate even
	// under delayed disconnect detection.
	if err := c.session.Leave(c.characterID); err != nil {
		c.logger.Debug("Leave failed", zap.Error(err))
	}
	if err := c.session.Close(); err != nil {
		c.logger.Debug("Close failed", zap.Error(err))
	}
	<-c.loopDone
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current character, or nil before Ready.
func (c *Controller) Snapshot() *Character {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneCharacter(c.char)
}

// LastError returns the most recent transient error message, if any.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// AddAbility creates an ability through the API. The local snapshot is only
// updated by the broadcast echo.
func (c *Controller) AddAbility(ctx context.Context, name string, score int) error {
	_, err := c.api.CreateAbility(ctx, c.characterID, name, score)
	return c.recordActionErr(err)
}

// SetAbilityScore updates an ability's score through the API.
func (c *Controller) SetAbilityScore(ctx context.Context, abilityID uint, score int) error {
	_, err := c.api.UpdateAbility(ctx, c.characterID, abilityID, score)
	return c.recordActionErr(err)
}

// RemoveAbility deletes an ability through the API.
func (c *Controller) RemoveAbility(ctx context.Context, abilityID uint) error {
	return c.recordActionErr(c.api.DeleteAbility(ctx, c.characterID, abilityID))
}

// AddEquipment creates an equipment entry through the API.
func (c *Controller) AddEquipment(ctx context.Context, name string, quantity int) error {
	_, err := c.api.CreateEquipment(ctx, c.characterID, name, quantity)
	return c.recordActionErr(err)
}

// SetEquipment updates an equipment entry through the API.
func (c *Controller) SetEquipment(ctx context.Context, equipmentID uint, name string, quantity int) error {
	_, err := c.api.UpdateEquipment(ctx, c.characterID, equipmentID, name, quantity)
	return c.recordActionErr(err)
}

// RemoveEquipment deletes an equipment entry through the API.
func (c *Controller) RemoveEquipment(ctx context.Context, equipmentID uint) error {
	return c.recordActionErr(c.api.DeleteEquipment(ctx, c.characterID, equipmentID))
}

// recordActionErr keeps per-action failures transient: the loaded character
// is never discarded, only the error message is surfaced.
func (c *Controller) recordActionErr(err error) error {
	if err == nil {
		return nil
	}
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
	return err
}

func (c *Controller) failInitial(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastErr = err.Error()
	c.mu.Unlock()
	close(c.loopDone)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.loopDone)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.session.Events():
			if !ok {
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Controller) handle(ctx context.Context, msg protocol.Message) {
	id, scoped := protocol.CharacterID(msg)
	if !scoped {
		if n, ok := msg.(protocol.Notice); ok {
			c.logger.Debug("Channel notice",
				zap.String("event", string(n.Event)), zap.String("message", n.Message))
		}
		return
	}
	// Events for other characters must never touch this view.
	if id != c.characterID {
		return
	}

	c.mu.Lock()
	if c.stopped || c.char == nil {
		c.mu.Unlock()
		return
	}
	changed, refetch := c.reconciler.Apply(c.char, msg)
	c.mu.Unlock()

	if refetch {
		c.refetch(ctx)
		return
	}
	if changed {
		c.emit()
	}
}

// refetch reloads the aggregate while keeping the stale snapshot visible; the
// controller never drops back to Loading once Ready.
func (c *Controller) refetch(ctx context.Context) {
	char, err := c.api.Character(ctx, c.characterID)

	c.mu.Lock()
	if c.stopped {
		// The view is gone; discard the result.
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.lastErr = err.Error()
		c.mu.Unlock()
		c.logger.Warn("Refetch failed", zap.Error(err))
		return
	}
	c.char = char
	c.state = StateReady
	c.mu.Unlock()
	c.emit()
}

func (c *Controller) emit() {
	if c.OnChange == nil {
		return
	}
	c.mu.Lock()
	snap := cloneCharacter(c.char)
	c.mu.Unlock()
	if snap != nil {
		c.OnChange(*snap)
	}
}

func cloneCharacter(char *Character) *Character {
	if char == nil {
		return nil
	}
	out := *char
	out.Abilities = append([]protocol.Ability(nil), char.Abilities...)
	out.Equipment = append([]protocol.Equipment(nil), char.Equipment...)
	return &out
}
