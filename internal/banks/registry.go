package banks

// Registry holds the bank parsers in a fixed registration order and
// dispatches sender ids to the first parser that claims them. It is built
// once at startup and read-only afterwards.
type Registry struct {
	generic Generic
	parsers []Parser
}

// NewRegistry builds the registry with the default parser set. The slice
// order is the dispatch order: when two parsers could claim the same
// sender, the earlier registration wins.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			Bancolombia{},
			Nequi{},
			Daviplata{},
			Davivienda{},
			BBVA{},
		},
	}
}

// ParserFor returns the first registered parser whose CanHandle accepts
// the sender id, or nil when no bank is recognized.
func (r *Registry) ParserFor(senderID string) Parser {
	for _, p := range r.parsers {
		if p.CanHandle(senderID) {
			return p
		}
	}
	return nil
}

// CanGenericParse reports whether fallback parsing should be attempted for
// a body the sender dispatch could not place.
func (r *Registry) CanGenericParse(body string) bool {
	return r.generic.CanParse(body)
}

// Generic returns the fallback parser.
func (r *Registry) Generic() Parser {
	return r.generic
}

// Parsers returns the registered bank parsers in dispatch order.
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.parsers))
	copy(out, r.parsers)
	return out
}
