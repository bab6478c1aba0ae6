package temporal

import (
	"errors"
	"time"

	appLog "chatcal/internal/log"
)

// Extractor is the full create pipeline: ordered rules, then the resolver,
// then the free parser when no rule matched.
type Extractor struct {
	resolver *Resolver
	fallback *FreeParser
}

func NewExtractor(loc *time.Location, now func() time.Time) *Extractor {
	return &Extractor{
		resolver: NewResolver(loc, now),
		fallback: NewFreeParser(loc, now),
	}
}

// Extract emits every occurrence described by text. Errors for which
// IsExtractionError is true mean nothing was emitted; any other error came
// from emit.
func (x *Extractor) Extract(text string, emit EmitFunc) error {
	m, err := Match(text)
	if errors.Is(err, ErrNoMatch) {
		appLog.Debug("no rule matched; trying free parser", "text", text)
		occ, perr := x.fallback.Parse(text)
		if perr != nil {
			return perr
		}
		return emit(occ)
	}
	if err != nil {
		return err
	}

	appLog.Debug("rule matched",
		"summary", m.Summary,
		"start", m.Start.Format(),
		"end", m.End.Format(),
		"kind", m.Recurrence.Kind.String(),
	)
	return x.resolver.Resolve(m, emit)
}
