package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("bookings").
		Where(squirrel.Eq{"provider_id": 7}).
		Where(squirrel.Eq{"status": []string{"PENDING", "CONFIRMED"}}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM bookings WHERE provider_id = $1 AND status IN ($2,$3)", query)
	assert.Equal(t, []interface{}{7, "PENDING", "CONFIRMED"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, _, err := Update("bookings").
		Set("status", "CONFIRMED").
		Where(squirrel.Eq{"id": 1}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE bookings SET status = $1 WHERE id = $2", query)
}
