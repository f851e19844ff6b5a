package statement

import "sync"

// Resolver owns security identity policy. The engine calls it synchronously
// during extraction and treats the returned reference as authoritative for
// transaction linkage.
//
// Implementations must guarantee at-most-one-creation semantics: concurrent
// resolution of the same identifier (or name+currency) key from several
// in-flight extractions converges to a single logical security. The engine
// itself takes no locks.
type Resolver interface {
	// Resolve returns the known security matching the draft's identity, by
	// identifier first, then by name+currency.
	Resolve(draft *Security) (*Security, bool)
	// Create registers a new security and returns the authoritative
	// reference.
	Create(draft *Security) *Security
}

// MemResolver is a mutex-guarded in-memory Resolver, used by the CLI and by
// tests. Its zero value is not usable; create it with NewMemResolver.
type MemResolver struct {
	mu        sync.Mutex
	byID      map[string]*Security // keyed by identifier (isin:…, wkn:…, ticker:…)
	byNameCur map[string]*Security // keyed by name+currency
	created   int
}

// NewMemResolver creates an empty in-memory resolver, optionally pre-seeded
// with known securities.
func NewMemResolver(seed ...*Security) *MemResolver {
	r := &MemResolver{
		byID:      make(map[string]*Security),
		byNameCur: make(map[string]*Security),
	}
	for _, s := range seed {
		r.index(s)
	}
	return r
}

func (r *MemResolver) index(s *Security) {
	if s.ISIN != "" {
		r.byID["isin:"+s.ISIN] = s
	}
	if s.WKN != "" {
		r.byID["wkn:"+s.WKN] = s
	}
	if s.Ticker != "" {
		r.byID["ticker:"+s.Ticker] = s
	}
	// Name+currency only identifies a security that has a name: nameless
	// identifier-only securities must never collide on it.
	if s.Name != "" {
		r.byNameCur[s.Name+"/"+s.Currency] = s
	}
}

// lookup must be called with the mutex held.
func (r *MemResolver) lookup(draft *Security) (*Security, bool) {
	if draft.ISIN != "" {
		if s, ok := r.byID["isin:"+draft.ISIN]; ok {
			return s, true
		}
	}
	if draft.WKN != "" {
		if s, ok := r.byID["wkn:"+draft.WKN]; ok {
			return s, true
		}
	}
	if draft.Ticker != "" {
		if s, ok := r.byID["ticker:"+draft.Ticker]; ok {
			return s, true
		}
	}
	if draft.Name != "" {
		if s, ok := r.byNameCur[draft.Name+"/"+draft.Currency]; ok {
			return s, true
		}
	}
	return nil, false
}

// Resolve implements Resolver.
func (r *MemResolver) Resolve(draft *Security) (*Security, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(draft)
}

// Create implements Resolver. If an equivalent security slipped in since the
// caller's Resolve, the existing one is returned instead of a duplicate.
func (r *MemResolver) Create(draft *Security) *Security {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.lookup(draft); ok {
		return s
	}
	s := *draft
	r.index(&s)
	r.created++
	return &s
}

// Created returns how many securities this resolver has created.
func (r *MemResolver) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}
