package registry

import (
	"sort"
	"sync"

	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
)

// Renderer receives every newly appended message exactly once, after the
// append. Visual insertion is the caller's concern; the registry never
// inspects the result.
type Renderer interface {
	Render(msg models.Message, chat models.Chat)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(msg models.Message, chat models.Chat)

func (f RendererFunc) Render(msg models.Message, chat models.Chat) { f(msg, chat) }

// Registry is the single in-memory source of truth for chat state. Message
// sequences are append-ordered by arrival; timestamps are not re-sorted.
type Registry struct {
	mu       sync.RWMutex
	chats    map[string]*chatState
	order    []string
	active   string
	renderer Renderer
}

type chatState struct {
	meta    models.Chat
	history []models.Message
}

func New(r Renderer) *Registry {
	return &Registry{chats: make(map[string]*chatState), renderer: r}
}

// EnsureChat creates a chat record if absent. An existing record's history
// and metadata are never overwritten.
func (reg *Registry) EnsureChat(seed models.Chat) {
	if seed.ID == "" {
		return
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.chats[seed.ID]; ok {
		return
	}
	reg.chats[seed.ID] = &chatState{meta: seed}
	reg.order = append(reg.order, seed.ID)
}

// Get returns the chat metadata and whether the chat exists.
func (reg *Registry) Get(chatID string) (models.Chat, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	cs, ok := reg.chats[chatID]
	if !ok {
		return models.Chat{}, false
	}
	return cs.meta, true
}

// Chats returns all chat metadata in creation order.
func (reg *Registry) Chats() []models.Chat {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]models.Chat, 0, len(reg.order))
	for _, id := range reg.order {
		out = append(out, reg.chats[id].meta)
	}
	return out
}

// AppendMessage appends msg to the chat's sequence, preserving arrival
// order, and hands it to the renderer. An unknown chat id is a logged
// no-op, per the ignore-malformed-intent policy.
func (reg *Registry) AppendMessage(chatID string, msg models.Message) bool {
	reg.mu.Lock()
	cs, ok := reg.chats[chatID]
	if !ok {
		reg.mu.Unlock()
		logger.Warn("append_unknown_chat", "chat", chatID, "msg_id", msg.ID)
		return false
	}
	cs.history = append(cs.history, msg)
	meta := cs.meta
	reg.mu.Unlock()

	if reg.renderer != nil {
		reg.renderer.Render(msg, meta)
	}
	return true
}

// History returns a copy of the chat's message sequence.
func (reg *Registry) History(chatID string) []models.Message {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	cs, ok := reg.chats[chatID]
	if !ok {
		return nil
	}
	return append([]models.Message(nil), cs.history...)
}

// SetActive marks the chat currently displayed by the UI collaborator. An
// empty id means no chat is displayed.
func (reg *Registry) SetActive(chatID string) {
	reg.mu.Lock()
	reg.active = chatID
	reg.mu.Unlock()
}

// Active returns the currently displayed chat id.
func (reg *Registry) Active() string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.active
}

// RenderLive re-renders msg into the live view if its chat is the one
// currently displayed. Used by the offline queue on resync; the history
// already holds the message, so this never appends.
func (reg *Registry) RenderLive(msg models.Message) {
	reg.mu.RLock()
	cs, ok := reg.chats[msg.ChatID]
	active := reg.active == msg.ChatID
	var meta models.Chat
	if ok {
		meta = cs.meta
	}
	reg.mu.RUnlock()

	if ok && active && reg.renderer != nil {
		reg.renderer.Render(msg, meta)
	}
}

// Load rehydrates the registry from persisted chats and their message
// mirrors. Messages are replayed in id order, which matches the order the
// store observed them.
func (reg *Registry) Load(chats []models.Chat, msgs map[string][]models.Message) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, c := range chats {
		if _, ok := reg.chats[c.ID]; ok {
			continue
		}
		history := append([]models.Message(nil), msgs[c.ID]...)
		sort.SliceStable(history, func(i, j int) bool { return history[i].ID < history[j].ID })
		reg.chats[c.ID] = &chatState{meta: c, history: history}
		reg.order = append(reg.order, c.ID)
	}
}

// Len reports the number of known chats.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.chats)
}
