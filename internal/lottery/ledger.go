package lottery

// Identity is the opaque identity of a caller. The empty identity means unset.
type Identity string

// Ticket is one slot in the participant ledger.
type Ticket struct {
	Holder Identity `json:"holder"`
	Seq    int      `json:"seq"`
}

// Ledger is the append-only record of entries of a single lottery.
// It is not safe for concurrent use; Lottery guards it.
type Ledger struct {
	price   uint64
	tickets []Ticket
	counts  map[Identity]int
}

// NewLedger creates an empty ledger for tickets of the given price.
func NewLedger(price uint64) *Ledger {
	return &Ledger{
		price:  price,
		counts: make(map[Identity]int),
	}
}

func restoreLedger(price uint64, tickets []Ticket) *Ledger {
	l := NewLedger(price)
	for _, t := range tickets {
		l.Append(t.Holder)
	}
	return l
}

// Append records one ticket for holder and returns it.
func (l *Ledger) Append(holder Identity) Ticket {
	t := Ticket{Holder: holder, Seq: len(l.tickets)}
	l.tickets = append(l.tickets, t)
	l.counts[holder]++
	return t
}

// truncate drops every ticket from index n on, undoing appends.
func (l *Ledger) truncate(n int) {
	for _, t := range l.tickets[n:] {
		l.counts[t.Holder]--
		if l.counts[t.Holder] == 0 {
			delete(l.counts, t.Holder)
		}
	}
	l.tickets = l.tickets[:n]
}

// Len returns the number of tickets.
func (l *Ledger) Len() int {
	return len(l.tickets)
}

// Count returns how many tickets holder owns.
func (l *Ledger) Count(holder Identity) int {
	return l.counts[holder]
}

// At returns the ticket in slot i.
func (l *Ledger) At(i int) Ticket {
	return l.tickets[i]
}

// Holders returns the holder of every ticket in insertion order.
func (l *Ledger) Holders() []Identity {
	out := make([]Identity, len(l.tickets))
	for i, t := range l.tickets {
		out[i] = t.Holder
	}
	return out
}

// Tickets returns a copy of the tickets.
func (l *Ledger) Tickets() []Ticket {
	out := make([]Ticket, len(l.tickets))
	copy(out, l.tickets)
	return out
}

// Balance is the total paid into the ledger.
func (l *Ledger) Balance() uint64 {
	return uint64(len(l.tickets)) * l.price
}
