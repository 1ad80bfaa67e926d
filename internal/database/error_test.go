package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"AgriHub/entity"
)

func TestFindErrorMapping(t *testing.T) {
	m := &MongoDB{}

	assert.ErrorIs(t, m.findError("find conversation", mongo.ErrNoDocuments), entity.ErrNotFound)

	driverErr := errors.New("socket was unexpectedly closed")
	mapped := m.findError("find sensor", driverErr)
	assert.ErrorIs(t, mapped, driverErr)
	assert.Contains(t, mapped.Error(), "find sensor")
}
