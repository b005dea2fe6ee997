package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertReplacesOrAppends(t *testing.T) {
	list := Samples()

	updated := Upsert(list, Client{ID: "client2", Name: "Jane Doe"})
	assert.Len(t, updated, 2)
	assert.Equal(t, "Jane Doe", updated[1].Name)
	assert.Equal(t, "John Doe", list[1].Name)

	added := Upsert(list, Client{ID: "client3", Name: "New"})
	assert.Len(t, added, 3)
	assert.Len(t, list, 2)
}

func TestRemove(t *testing.T) {
	list := Samples()

	out, ok := Remove(list, "client1")
	assert.True(t, ok)
	assert.Len(t, out, 1)
	assert.Equal(t, "client2", out[0].ID)

	_, ok = Remove(list, "nope")
	assert.False(t, ok)
}

func TestToClientDropsEmptyVatNumber(t *testing.T) {
	empty := ""
	c := SaveClientRequest{Name: "A", VatNumber: &empty}.ToClient("id1")
	assert.Nil(t, c.VatNumber)
	assert.Equal(t, "id1", c.ID)
}
