package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/coreactor/actorkit/actor"
	"github.com/coreactor/actorkit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsConfiguredWorkerCount(t *testing.T) {
	t.Run("builds one worker per configured count, ids starting at 1", func(t *testing.T) {
		rt := New(config.RuntimeConfig{WorkerCount: 3})
		require.Len(t, rt.Workers(), 3)
		for i, w := range rt.Workers() {
			assert.Equal(t, uint8(i+1), w.ID())
		}
	})

	t.Run("defaults to one worker for a non-positive count", func(t *testing.T) {
		rt := New(config.RuntimeConfig{WorkerCount: 0})
		assert.Len(t, rt.Workers(), 1)
	})
}

func TestRuntimeSpawnAndCrashReport(t *testing.T) {
	t.Run("a crashed service surfaces in the crash reporter", func(t *testing.T) {
		rt := New(config.RuntimeConfig{WorkerCount: 1, HTTP: config.HTTPConfig{Enabled: false}})
		rt.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = rt.Stop(ctx)
		}()

		victim := actor.NewService("victim", actor.WithOnMessage(func(s *actor.Service, m *actor.Message) {
			panic("kaboom")
		}))
		id, err := rt.Spawn(victim)
		require.NoError(t, err)

		rt.Router().Send(actor.NewMessage(id, id, actor.PTypeText, "trigger", 0, nil))

		assert.Eventually(t, func() bool {
			reports, _ := rt.Reporter().Reports()
			return len(reports) == 1
		}, time.Second, time.Millisecond)
	})
}
