package picker

// SelectionModel is the built-in bounded selection set used when the caller
// does not supply their own delegate. Membership is keyed by asset identity,
// so it survives a reload of the same album; after an album switch the caller
// decides whether to Clear it.
type SelectionModel struct {
	limit int

	order   []string
	items   map[string]Asset
	futures map[string]*AttachmentFuture

	// OnChanged fires after every successful toggle with the new count.
	OnChanged func(count int)
	// OnLimit fires when a selection attempt was refused by the bound.
	OnLimit func()
}

var _ SelectionDelegate = (*SelectionModel)(nil)

// NewSelectionModel returns a model bounded to at most limit items. A limit
// of zero or less falls back to DefaultSelectionLimit.
func NewSelectionModel(limit int) *SelectionModel {
	if limit <= 0 {
		limit = DefaultSelectionLimit
	}
	return &SelectionModel{
		limit:   limit,
		items:   make(map[string]Asset),
		futures: make(map[string]*AttachmentFuture),
	}
}

// IsSelected reports membership by asset identity.
func (m *SelectionModel) IsSelected(a Asset) bool {
	_, ok := m.items[a.ID()]
	return ok
}

// CanSelectMore is the capacity predicate.
func (m *SelectionModel) CanSelectMore() bool {
	return len(m.items) < m.limit
}

// Count returns how many items are selected.
func (m *SelectionModel) Count() int {
	return len(m.items)
}

// Selected records a toggle-on in arrival order.
func (m *SelectionModel) Selected(a Asset, attachment *AttachmentFuture) {
	id := a.ID()
	if _, ok := m.items[id]; ok {
		return
	}
	m.items[id] = a
	m.order = append(m.order, id)
	if attachment != nil {
		m.futures[id] = attachment
	}
	if m.OnChanged != nil {
		m.OnChanged(len(m.items))
	}
}

// Deselected records a toggle-off. The attachment future, if any, is dropped
// without waiting for it; a late result simply has nowhere to go.
func (m *SelectionModel) Deselected(a Asset) {
	id := a.ID()
	if _, ok := m.items[id]; !ok {
		return
	}
	delete(m.items, id)
	delete(m.futures, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.OnChanged != nil {
		m.OnChanged(len(m.items))
	}
}

// SelectionLimitReached surfaces the policy rejection to the owner.
func (m *SelectionModel) SelectionLimitReached() {
	if m.OnLimit != nil {
		m.OnLimit()
	}
}

// Assets returns the selected assets in selection order.
func (m *SelectionModel) Assets() []Asset {
	out := make([]Asset, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

// Attachments returns the pending attachment futures in selection order.
func (m *SelectionModel) Attachments() []*AttachmentFuture {
	out := make([]*AttachmentFuture, 0, len(m.order))
	for _, id := range m.order {
		if f, ok := m.futures[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Clear drops the whole selection without emitting per-item signals.
func (m *SelectionModel) Clear() {
	m.order = nil
	m.items = make(map[string]Asset)
	m.futures = make(map[string]*AttachmentFuture)
	if m.OnChanged != nil {
		m.OnChanged(0)
	}
}
