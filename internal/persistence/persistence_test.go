package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresPingWithoutPool(t *testing.T) {
	var nilPg *Postgres
	assert.Error(t, nilPg.Ping(context.Background()))
	assert.Error(t, (&Postgres{}).Ping(context.Background()))
}

func TestRedisPingWithoutClient(t *testing.T) {
	var nilRedis *Redis
	assert.Error(t, nilRedis.Ping(context.Background()))
	assert.Error(t, (&Redis{}).Ping(context.Background()))
}
