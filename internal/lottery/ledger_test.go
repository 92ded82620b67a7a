package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAppend(t *testing.T) {
	l := NewLedger(10)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, uint64(0), l.Balance())
	assert.Equal(t, 0, l.Count(user1))

	l.Append(user1)
	l.Append(user2)
	tk := l.Append(user1)

	assert.Equal(t, 2, tk.Seq)
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.Count(user1))
	assert.Equal(t, 1, l.Count(user2))
	assert.Equal(t, uint64(30), l.Balance())
	assert.Equal(t, []Identity{user1, user2, user1}, l.Holders())
}

func TestLedgerTruncate(t *testing.T) {
	l := NewLedger(10)
	l.Append(user1)
	l.Append(user2)
	l.Append(user2)

	l.truncate(1)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, 0, l.Count(user2))
	assert.Equal(t, 1, l.Count(user1))

	tk := l.Append(user2)
	assert.Equal(t, 1, tk.Seq)
}

func TestLedgerTicketsIsCopy(t *testing.T) {
	l := NewLedger(1)
	l.Append(user1)
	tickets := l.Tickets()
	tickets[0].Holder = user2
	assert.Equal(t, user1, l.At(0).Holder)
}

func TestRestoreLedger(t *testing.T) {
	l := restoreLedger(5, []Ticket{{Holder: user1, Seq: 0}, {Holder: user1, Seq: 1}, {Holder: owner, Seq: 2}})
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.Count(user1))
	assert.Equal(t, uint64(15), l.Balance())
}
