package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffEvent(t *testing.T) {
	t.Parallel()

	prev := Root{Loop: LoopConfig{FrameRate: 60}, App: AppInfo{Name: "a"}}

	t.Run("changed fields are listed in declaration order", func(t *testing.T) {
		next := prev
		next.Loop.FrameRate = 30
		next.Actuator.BasePath = "/ops"
		evt := diffEvent(&prev, &next)
		assert.Equal(t, []string{"Loop", "Actuator"}, evt.ChangedKeys)
		assert.Same(t, &prev, evt.OldConfig)
	})

	t.Run("equal values", func(t *testing.T) {
		next := prev
		assert.Empty(t, diffEvent(prev, next).ChangedKeys)
	})

	t.Run("nil side", func(t *testing.T) {
		evt := diffEvent(nil, &prev)
		assert.Empty(t, evt.ChangedKeys)
		assert.Nil(t, evt.OldConfig)
	})

	t.Run("mismatched types", func(t *testing.T) {
		assert.Empty(t, diffEvent(prev, LoopConfig{}).ChangedKeys)
	})
}
