package server

import (
	"clutch-review/config"
	"clutch-review/repository"
	"clutch-review/service"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApp_WireWithoutBroker(t *testing.T) {
	ctx := SetupLogger(&config.Config{})
	app := &App{}
	app.wire(service.Deps{Repo: repository.NewMemoryRepo()}, &config.Config{Moderation: config.DefaultModeration()})

	assert.NotNil(t, app.Videos)
	assert.NotNil(t, app.Reviews)
	assert.NotNil(t, app.Uploads)
	assert.NotNil(t, app.Bans)
	assert.NotPanics(t, func() { app.Close(ctx) })
}
