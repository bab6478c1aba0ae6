package temporal

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// FallbackSummary is the summary given to events found by the free parser.
const FallbackSummary = "Event"

// FreeParser finds a single date/time anywhere in free text. It is used
// only when no rule matched.
type FreeParser struct {
	w   *when.Parser
	loc *time.Location
	now func() time.Time
}

func NewFreeParser(loc *time.Location, now func() time.Time) *FreeParser {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &FreeParser{w: w, loc: loc, now: now}
}

// Parse returns a zero-length occurrence at the first date/time found in
// text, localized to the reference zone.
func (p *FreeParser) Parse(text string) (Occurrence, error) {
	base := p.now().In(p.loc)
	res, err := p.w.Parse(text, base)
	if err != nil {
		return Occurrence{}, fmt.Errorf("%w: %v", ErrNotUnderstood, err)
	}
	if res == nil {
		return Occurrence{}, ErrNotUnderstood
	}

	at := Localize(Naive(res.Time.In(p.loc)), p.loc)
	return Occurrence{
		Summary: FallbackSummary,
		Start:   at,
		End:     at,
	}, nil
}
