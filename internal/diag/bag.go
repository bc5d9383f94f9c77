package diag

import (
	"math"
	"sort"

	"fortio.org/safecast"

	"plume/internal/source"
)

// Bag is an append-only ordered log of diagnostics with a hard cap.
// One Bag lives for exactly one compilation.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	capped, err := safecast.Conv[uint16](max)
	if err != nil {
		capped = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, 16),
		max:   capped,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если лимит достигнут и запись отброшена.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Info records an info-level diagnostic.
func (b *Bag) Info(msg, src string, span source.Span) {
	b.Add(Diagnostic{Severity: SevInfo, Message: msg, Source: src, Span: span})
}

// Warning records a warning-level diagnostic.
func (b *Bag) Warning(msg, src string, span source.Span) {
	b.Add(Diagnostic{Severity: SevWarning, Message: msg, Source: src, Span: span})
}

// Error records an error-level diagnostic.
func (b *Bag) Error(msg, src string, span source.Span) {
	b.Add(Diagnostic{Severity: SevError, Message: msg, Source: src, Span: span})
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether at least one error-level diagnostic was recorded.
// Overall compilation success is defined as !HasErrors().
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one warning-level diagnostic exists.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Reset clears all recorded diagnostics, keeping the cap.
func (b *Bag) Reset() {
	b.items = b.items[:0]
}

// Sort orders diagnostics by file, start offset, severity (desc) and message
// for stable output. Append order is preserved among equal keys.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Span.File != dj.Span.File {
			return di.Span.File < dj.Span.File
		}
		if di.Span.Start != dj.Span.Start {
			return di.Span.Start < dj.Span.Start
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Message < dj.Message
	})
}
